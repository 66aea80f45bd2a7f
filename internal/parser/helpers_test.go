package parser

import (
	"encoding/binary"
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
)

func nmeaLine(payload string) string {
	return fmt.Sprintf("$%s*%s\r\n", payload, nmea.Checksum(payload))
}

func ubxFrame(class, id byte, payload []byte) []byte {
	buf := []byte{ubxSync1, ubxSync2, class, id}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)
	return append(buf, 0x00, 0x00)
}

func sbfBlock(num uint16, payload []byte) []byte {
	buf := []byte{sbfSync1, sbfSync2, 0x00, 0x00}
	buf = binary.LittleEndian.AppendUint16(buf, num)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(sbfHeaderLen+len(payload)))
	return append(buf, payload...)
}

func sbfPayload(size int, towMs uint32) []byte {
	p := make([]byte, size)
	binary.LittleEndian.PutUint32(p[0:4], towMs)
	return p
}

func pvtGeodetic(towMs uint32, latDeg, lonDeg, heightM float64, nrSV byte) []byte {
	p := sbfPayload(72, towMs)
	binary.LittleEndian.PutUint64(p[8:16], math.Float64bits(latDeg*math.Pi/180))
	binary.LittleEndian.PutUint64(p[16:24], math.Float64bits(lonDeg*math.Pi/180))
	binary.LittleEndian.PutUint64(p[24:32], math.Float64bits(heightM))
	p[66] = nrSV
	return sbfBlock(sbfPVTGeodetic, p)
}

func navPVT(fixType byte, flags byte) []byte {
	p := make([]byte, 92)
	p[20] = fixType
	p[21] = flags
	return ubxFrame(0x01, 0x07, p)
}

func navStatus(spoof byte) []byte {
	p := make([]byte, 16)
	p[7] = spoof << 3
	return ubxFrame(0x01, 0x03, p)
}

func secSigV1(spoof byte) []byte {
	p := make([]byte, 12)
	p[0] = 1
	p[8] = 0x01 | spoof<<1
	return ubxFrame(0x27, 0x09, p)
}

type sigRecord struct {
	gnssID, svID, sigID, cno byte
}

func navSig(recs ...sigRecord) []byte {
	p := make([]byte, 8+len(recs)*16)
	p[0] = 0 // version
	p[5] = byte(len(recs))
	for i, r := range recs {
		off := 8 + i*16
		p[off] = r.gnssID
		p[off+1] = r.svID
		p[off+2] = r.sigID
		p[off+6] = r.cno
	}
	return ubxFrame(0x01, 0x43, p)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

const ggaScenario = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"
