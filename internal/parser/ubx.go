package parser

import (
	"encoding/binary"
	"fmt"
)

const (
	ubxSync1 = 0xB5
	ubxSync2 = 0x62

	ubxHeaderLen   = 6
	ubxChecksumLen = 2
)

type ubxKey struct {
	class byte
	id    byte
}

var (
	ubxNavStatus = ubxKey{0x01, 0x03}
	ubxNavPVT    = ubxKey{0x01, 0x07}
	ubxNavSig    = ubxKey{0x01, 0x43}
	ubxSecSig    = ubxKey{0x27, 0x09}
)

// Histogram labels for the decoded UBX messages. Consumers key on these.
var ubxLabels = map[ubxKey]string{
	ubxNavPVT:    "UBX-NAV-PVT",
	ubxNavSig:    "UBX-NAV-SIG",
	ubxSecSig:    "UBX-SEC-SIG",
	ubxNavStatus: "UBX-NAV-STATUS",
}

func ubxLabel(k ubxKey) string {
	if l, ok := ubxLabels[k]; ok {
		return l
	}
	return fmt.Sprintf("UBX-%02X-%02X", k.class, k.id)
}

// ubxDecoder frames sync(2) class(1) id(1) len(2 LE) payload ck(2).
// The checksum is not verified.
type ubxDecoder struct{}

func (ubxDecoder) match(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == ubxSync1 && buf[1] == ubxSync2
}

func (ubxDecoder) decode(buf []byte, acc *Accumulator) (int, bool) {
	if len(buf) < ubxHeaderLen {
		return 0, false
	}
	k := ubxKey{class: buf[2], id: buf[3]}
	n := int(binary.LittleEndian.Uint16(buf[4:6]))
	total := ubxHeaderLen + n + ubxChecksumLen
	if total > len(buf) {
		return 0, false
	}
	payload := buf[ubxHeaderLen : ubxHeaderLen+n]

	acc.stats.UBXFrames++
	acc.count(ubxLabel(k))
	switch k {
	case ubxNavPVT:
		applyNavPVT(payload, acc)
	case ubxNavSig:
		applyNavSig(payload, acc)
	case ubxSecSig:
		applySecSig(payload, acc)
	case ubxNavStatus:
		applyNavStatus(payload, acc)
	}
	return total, true
}

// NAV-PVT: fixType at 20, flags at 21 (bit 0 gnssFixOK).
func applyNavPVT(p []byte, acc *Accumulator) {
	if len(p) < 22 {
		return
	}
	fixType := int(p[20])
	valid := p[21]&0x01 != 0
	acc.draft.fixType = &fixType
	acc.draft.fixValid = &valid
}

const ubxSigRecordLen = 16

// NAV-SIG: numSigs at 5, 16-byte records from 8. Only GPS L1C/A
// (gnssId 0, sigId 0) feeds the average.
func applyNavSig(p []byte, acc *Accumulator) {
	if len(p) < 8 {
		return
	}
	numSigs := int(p[5])
	sum, n := 0.0, 0
	for i := 0; i < numSigs; i++ {
		off := 8 + i*ubxSigRecordLen
		if off+ubxSigRecordLen > len(p) {
			break
		}
		rec := p[off : off+ubxSigRecordLen]
		gnssID, sigID, cno := rec[0], rec[2], rec[6]
		if gnssID != 0 || sigID != 0 {
			continue
		}
		sum += float64(cno)
		n++
	}
	if n == 0 {
		return
	}
	avg := round1(sum / float64(n))
	acc.draft.ubxCN0 = &avg
}

// SEC-SIG: version 1 keeps spoofingState in bits 1-2 of spfFlags (offset 8);
// version 2 packs it into bits 4-6 of sigSecFlags (offset 1).
func applySecSig(p []byte, acc *Accumulator) {
	if len(p) < 1 {
		return
	}
	var raw byte
	switch version := p[0]; {
	case version <= 1:
		if len(p) < 9 {
			return
		}
		raw = (p[8] >> 1) & 0x03
	default:
		if len(p) < 2 {
			return
		}
		raw = (p[1] >> 4) & 0x07
	}
	st := SpoofState(raw)
	if st > SpoofConfirmed {
		st = SpoofConfirmed
	}
	acc.draft.spoofSecondary = &st
}

// NAV-STATUS: flags2 at 7, spoofDetState in bits 3-4.
func applyNavStatus(p []byte, acc *Accumulator) {
	if len(p) < 8 {
		return
	}
	acc.draft.spoofPrimary = SpoofState((p[7] >> 3) & 0x03)
}
