package parser

import (
	"encoding/binary"
	"math"
)

const (
	sbfSync1 = '$'
	sbfSync2 = '@'

	sbfHeaderLen = 8

	sbfTOWDoNotUse uint32 = 0xFFFFFFFF
	// Doubles are set to -2e10 when not available.
	sbfFloatDoNotUse = -1e10
	sbfNrSVUnknown   = 255
	sbfCN0DoNotUse   = 255

	sbfSigGPSL1CA = 0

	// fixQualityValid is the GGA-style quality reported for a usable SBF PVT.
	fixQualityValid = 1
)

const (
	sbfPVTGeodetic = 4007
	sbfMeasEpoch   = 4027
	sbfRFStatus    = 4092
)

var sbfLabels = map[uint16]string{
	sbfPVTGeodetic: "SBF-PVTGeodetic",
	sbfMeasEpoch:   "SBF-MeasEpoch",
	sbfRFStatus:    "SBF-RFStatus",
}

// sbfDecoder frames sync(2) crc(2) id(2 LE, low 13 bits = block number)
// length(2 LE, whole block). The CRC is not verified.
type sbfDecoder struct{}

func (sbfDecoder) match(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == sbfSync1 && buf[1] == sbfSync2
}

func (sbfDecoder) decode(buf []byte, acc *Accumulator) (int, bool) {
	if len(buf) < sbfHeaderLen {
		return 0, false
	}
	num := binary.LittleEndian.Uint16(buf[4:6]) & 0x1FFF
	n := int(binary.LittleEndian.Uint16(buf[6:8]))
	if n < sbfHeaderLen || n > len(buf) {
		return 0, false
	}
	payload := buf[sbfHeaderLen:n]

	acc.stats.SBFBlocks++
	if len(payload) >= 4 {
		if tow := binary.LittleEndian.Uint32(payload[0:4]); tow != sbfTOWDoNotUse {
			acc.observeTOW(tow)
		}
	}

	label, ok := sbfLabels[num]
	if !ok {
		return n, true
	}
	acc.count(label)
	switch num {
	case sbfPVTGeodetic:
		applyPVTGeodetic(payload, acc)
	case sbfMeasEpoch:
		applyMeasEpoch(payload, acc)
	case sbfRFStatus:
		applyRFStatus(payload, acc)
	}
	return n, true
}

func sbfFloat64(b []byte) (float64, bool) {
	v := math.Float64frombits(binary.LittleEndian.Uint64(b))
	if math.IsNaN(v) || v <= sbfFloatDoNotUse {
		return 0, false
	}
	return v, true
}

// PVTGeodetic: latitude(8) longitude(16) height(24) in rad/rad/m, NrSV at 66.
func applyPVTGeodetic(p []byte, acc *Accumulator) {
	d := &acc.draft
	if len(p) >= 32 {
		lat, latOK := sbfFloat64(p[8:16])
		lon, lonOK := sbfFloat64(p[16:24])
		if latOK && lonOK {
			latDeg := lat * 180 / math.Pi
			lonDeg := lon * 180 / math.Pi
			d.latDeg = &latDeg
			d.lonDeg = &lonDeg
			d.fixQuality = fixQualityValid
			if h, ok := sbfFloat64(p[24:32]); ok {
				d.altM = &h
			}
		}
	}
	if len(p) > 66 && p[66] != sbfNrSVUnknown {
		d.satsTotal = int(p[66])
	}
}

// MeasEpoch: N1(6) SB1Length(7) SB2Length(8), Type1 sub-blocks from 12, each
// followed by N2 Type2 sub-blocks. Type1: Type(1) SVID(2) CN0(15) N2(19).
//
// Every measured GPS L1C/A satellite is counted as tracked; MeasEpoch carries
// no used-in-fix information.
func applyMeasEpoch(p []byte, acc *Accumulator) {
	if len(p) < 12 {
		return
	}
	n1 := int(p[6])
	sb1 := int(p[7])
	sb2 := int(p[8])
	if sb1 < 20 {
		return
	}
	off := 12
	for i := 0; i < n1; i++ {
		if off+sb1 > len(p) {
			break
		}
		rec := p[off : off+sb1]
		sigType := rec[1] & 0x1F
		svid := int(rec[2])
		raw := rec[15]
		if sigType == sbfSigGPSL1CA && isPrimaryPRN(svid) && raw != sbfCN0DoNotUse {
			acc.sats.observe(svid, float64(raw)*0.25+10)
		}
		off += sb1 + int(rec[19])*sb2
	}
}

// RFStatus: flags at 8, bit 0 = inauthentic signals detected.
func applyRFStatus(p []byte, acc *Accumulator) {
	if len(p) < 9 {
		return
	}
	st := SpoofSafe
	if p[8]&0x01 != 0 {
		st = SpoofConfirmed
	}
	acc.draft.spoofSecondary = &st
}
