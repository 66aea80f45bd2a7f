package parser

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

const defaultNMEALookahead = 500

// nmeaDecoder isolates one CR/LF terminated line and applies it as a loose
// comma-delimited record. Short or empty fields never abort the sentence.
type nmeaDecoder struct {
	lookahead int
}

func (nmeaDecoder) match(buf []byte) bool {
	return buf[0] == '$' && (len(buf) < 2 || buf[1] != sbfSync2)
}

func (d nmeaDecoder) decode(buf []byte, acc *Accumulator) (int, bool) {
	window := buf
	if len(window) > d.lookahead {
		window = window[:d.lookahead]
	}
	end := bytes.IndexAny(window, "\r\n")
	if end < 0 {
		return 0, false
	}
	acc.stats.NMEASentences++
	applyNMEA(string(buf[:end]), acc)
	n := end + 1
	if buf[end] == '\r' && n < len(buf) && buf[n] == '\n' {
		n++
	}
	return n, true
}

func applyNMEA(line string, acc *Accumulator) {
	line = strings.TrimSpace(line)
	acc.appendExcerpt(line)

	payload := strings.TrimPrefix(line, nmea.SentenceStart)
	if star := strings.LastIndex(payload, nmea.ChecksumSep); star >= 0 {
		ck := strings.TrimSpace(payload[star+1:])
		payload = payload[:star]
		if !strings.EqualFold(ck, nmea.Checksum(payload)) {
			acc.stats.ChecksumMismatch++
		}
	}

	fields := strings.Split(payload, nmea.FieldSep)
	// Histogram labels are the sentence id without the leading '$' ("GPGGA").
	id := fields[0]
	acc.count(id)
	if len(id) < 5 {
		return
	}
	talker := id[:2]
	switch id[len(id)-3:] {
	case nmea.TypeGSA:
		applyGSA(fields, acc)
	case nmea.TypeGSV:
		applyGSV(talker, fields, acc)
	case nmea.TypeGGA:
		applyGGA(fields, acc)
	}
}

// GSA: DOP and active satellites
//
//	0: talker+type
//	1: mode (M/A)
//	2: fix type
//	3-14: PRNs of satellites used in the solution
func applyGSA(f []string, acc *Accumulator) {
	for i := 3; i <= 14 && i < len(f); i++ {
		prn, ok := parseInt(f[i])
		if ok && isPrimaryPRN(prn) {
			acc.sats.markUsed(prn)
		}
	}
}

// GSV: satellites in view
//
//	0: talker+type
//	1: total messages
//	2: message number
//	3: satellites in view
//	4..: groups of (PRN, elevation, azimuth, SNR)
func applyGSV(talker string, f []string, acc *Accumulator) {
	for i := 4; i+3 < len(f); i += 4 {
		prn, ok := parseInt(f[i])
		if !ok {
			continue
		}
		snr, ok := parseFloat(f[i+3])
		if !ok || snr <= 0 {
			continue
		}
		if !primaryTalker(talker, prn) {
			continue
		}
		acc.sats.observe(prn, snr)
	}
}

// primaryTalker reports whether a GSV satellite belongs to GPS. A combined
// GN talker mixes constellations, so only the GPS PRN range is trusted.
func primaryTalker(talker string, prn int) bool {
	switch talker {
	case "GP":
		return true
	case "GN":
		return isPrimaryPRN(prn)
	default:
		return false
	}
}

// GGA: Global Positioning System Fix Data
// Fields:
//
//	0: talker+type
//	1: time (hhmmss.sss)
//	2: latitude
//	3: N/S
//	4: longitude
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
//	9: altitude (meters)
func applyGGA(f []string, acc *Accumulator) {
	if len(f) < 2 {
		return
	}
	sod, ok := parseClock(f[1])
	if !ok {
		return
	}
	acc.flush()
	acc.stampTime(sod)

	d := &acc.draft
	if len(f) > 5 {
		if lat, ok := parseNMEALatLon(f[2], f[3]); ok {
			d.latDeg = &lat
		}
		if lon, ok := parseNMEALatLon(f[4], f[5]); ok {
			d.lonDeg = &lon
		}
	}
	if len(f) > 6 {
		if q, ok := parseInt(f[6]); ok {
			d.fixQuality = q
		}
	}
	if len(f) > 7 {
		if n, ok := parseInt(f[7]); ok {
			d.satsTotal = n
		}
	}
	if len(f) > 9 {
		if alt, ok := parseFloat(f[9]); ok {
			d.altM = &alt
		}
	}
}

// parseClock converts hhmmss[.sss] into seconds of day. At least six
// characters are required.
func parseClock(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if len(v) < 6 {
		return 0, false
	}
	hh, err := strconv.Atoi(v[0:2])
	if err != nil || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(v[2:4])
	if err != nil || mm > 59 {
		return 0, false
	}
	ss, err := strconv.ParseFloat(v[4:], 64)
	if err != nil || ss < 0 || ss >= 61 {
		return 0, false
	}
	return float64(hh*3600+mm*60) + ss, true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseNMEALatLon parses NMEA lat/lon in ddmm.mmmm or dddmm.mmmm plus hemisphere.
func parseNMEALatLon(v string, hemi string) (float64, bool) {
	raw, ok := parseFloat(v)
	if !ok || raw < 0 {
		return 0, false
	}
	deg := math.Floor(raw / 100)
	mins := math.Mod(raw, 100)
	dec := deg + mins/60
	switch strings.ToUpper(strings.TrimSpace(hemi)) {
	case "S", "W":
		dec = -dec
	}
	return dec, true
}
