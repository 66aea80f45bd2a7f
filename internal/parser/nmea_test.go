package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_GGAScenario(t *testing.T) {
	res := ParseBytes([]byte(ggaScenario))

	require.Len(t, res.Epochs, 1)
	e := res.Epochs[0]
	require.Equal(t, "12:35:19", e.Timestamp)
	require.Zero(t, e.OffsetSec)
	require.NotNil(t, e.LatDeg)
	require.NotNil(t, e.LonDeg)
	require.InDelta(t, 48.1173, *e.LatDeg, 1e-4)
	require.InDelta(t, 11.5167, *e.LonDeg, 1e-4)
	require.NotNil(t, e.AltM)
	require.InDelta(t, 545.4, *e.AltM, 1e-9)
	require.Equal(t, 1, e.FixQuality)
	require.Equal(t, 8, e.SatsUsed)
	// Labels drop the '$' of the sentence start.
	require.Equal(t, map[string]int{"GPGGA": 1}, res.Messages)
	require.Zero(t, res.Stats.ChecksumMismatch)
}

func TestParse_GGASouthWest(t *testing.T) {
	res := ParseBytes([]byte(nmeaLine("GNGGA,010203.50,3351.000,S,15112.000,W,2,05,1.0,10.0,M,0.0,M,,")))
	require.Len(t, res.Epochs, 1)
	e := res.Epochs[0]
	require.Equal(t, "01:02:03", e.Timestamp)
	require.InDelta(t, -33.85, *e.LatDeg, 1e-9)
	require.InDelta(t, -151.2, *e.LonDeg, 1e-9)
	require.Equal(t, 2, e.FixQuality)
}

func TestParse_GGAWithoutTimeDoesNotOpenEpoch(t *testing.T) {
	res := ParseBytes([]byte(nmeaLine("GPGGA,1235,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")))
	require.Empty(t, res.Epochs)
	require.Equal(t, 1, res.Messages["GPGGA"])
}

func TestParse_GGAEmptyPositionFields(t *testing.T) {
	res := ParseBytes([]byte(nmeaLine("GPGGA,123519,,,,,0,,,,,,,,")))
	require.Len(t, res.Epochs, 1)
	require.Nil(t, res.Epochs[0].LatDeg)
	require.Nil(t, res.Epochs[0].LonDeg)
	require.Nil(t, res.Epochs[0].AltM)
	require.Zero(t, res.Epochs[0].SatsUsed)
}

func TestParse_GSADeduplicatesRepeatedPRN(t *testing.T) {
	in := concat(
		[]byte(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")),
		[]byte(nmeaLine("GPGSA,A,3,03,,,,,,,,,,,,2.5,1.3,2.1")),
		[]byte(nmeaLine("GNGSA,A,3,03,,,,,,,,,,,,2.5,1.3,2.1")),
	)
	res := ParseBytes(in)
	require.Len(t, res.Epochs, 1)
	require.Equal(t, 1, res.Epochs[0].SatsUsed)
}

func TestParse_GSAOverridesGGATotalAndIgnoresOtherConstellations(t *testing.T) {
	in := concat(
		[]byte(nmeaLine("GNGGA,123519,4807.038,N,01131.000,E,1,12,0.9,545.4,M,46.9,M,,")),
		[]byte(nmeaLine("GNGSA,A,3,01,07,32,33,65,70,,,,,,,2.5,1.3,2.1")),
	)
	res := ParseBytes(in)
	require.Len(t, res.Epochs, 1)
	require.Equal(t, 3, res.Epochs[0].SatsUsed)
}

func TestParse_GSVTrackedSetAndSamples(t *testing.T) {
	in := concat(
		[]byte(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")),
		[]byte(nmeaLine("GPGSV,2,1,05,03,40,120,45,04,10,200,,07,60,010,38,09,05,300,00")),
		// PRN 03 again in a second group, plus a GLONASS id on a combined talker.
		[]byte(nmeaLine("GNGSV,2,2,05,03,40,120,44,65,30,100,41")),
		[]byte(nmeaLine("GLGSV,1,1,01,70,30,100,50")),
	)
	res := ParseBytes(in)
	require.Len(t, res.Epochs, 1)
	e := res.Epochs[0]
	require.Equal(t, 2, e.SatsTracked) // 03 and 07
	require.InDelta(t, 45, e.CN0Max, 1e-9)
	require.InDelta(t, (45.0+44.0+38.0)/3, e.CN0Top3, 0.05)
	require.Equal(t, 1, res.Messages["GPGSV"])
	require.Equal(t, 1, res.Messages["GNGSV"])
	require.Equal(t, 1, res.Messages["GLGSV"])
}

func TestParse_SatelliteSetsClearedEachEpoch(t *testing.T) {
	in := concat(
		[]byte(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")),
		[]byte(nmeaLine("GPGSA,A,3,03,04,,,,,,,,,,,2.5,1.3,2.1")),
		[]byte(nmeaLine("GPGSV,1,1,01,03,40,120,45")),
		[]byte(nmeaLine("GPGGA,123520,4807.038,N,01131.000,E,1,06,0.9,545.4,M,46.9,M,,")),
	)
	res := ParseBytes(in)
	require.Len(t, res.Epochs, 2)
	require.Equal(t, 2, res.Epochs[0].SatsUsed)
	require.Equal(t, 1, res.Epochs[0].SatsTracked)
	require.Equal(t, 6, res.Epochs[1].SatsUsed)
	require.Zero(t, res.Epochs[1].SatsTracked)
	require.Zero(t, res.Epochs[1].CN0Top3)
	require.InDelta(t, 1, res.Epochs[1].OffsetSec, 1e-9)
}

func TestParse_OffsetWrapsAtMidnight(t *testing.T) {
	in := concat(
		[]byte(nmeaLine("GPGGA,235959,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")),
		[]byte(nmeaLine("GPGGA,000001,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")),
	)
	res := ParseBytes(in)
	require.Len(t, res.Epochs, 2)
	require.InDelta(t, 0, res.Epochs[0].OffsetSec, 1e-9)
	require.InDelta(t, 2, res.Epochs[1].OffsetSec, 1e-9)
}

func TestParse_ChecksumMismatchIsCountedNotRejected(t *testing.T) {
	res := ParseBytes([]byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*00\n"))
	require.Len(t, res.Epochs, 1)
	require.Equal(t, 1, res.Stats.ChecksumMismatch)
}

func TestParse_UnterminatedSentenceIsSkipped(t *testing.T) {
	res := ParseBytes([]byte("$GPGGA,123519,4807.038,N"))
	require.Empty(t, res.Epochs)
	require.Empty(t, res.Messages)
	require.Equal(t, 1, res.Stats.Truncated)
}

func TestParse_SentenceBeyondLookaheadIsSkipped(t *testing.T) {
	long := "$GPTXT," + strings.Repeat("x", 600) + "\n"
	res := New(Options{NMEALookahead: 100}).ParseBytes([]byte(long))
	require.Empty(t, res.Messages)
}

func TestParse_ExcerptCapKeepsEarlierLines(t *testing.T) {
	first := nmeaLine("GPTXT,01,01,02,hello")
	second := nmeaLine("GPTXT,01,01,02,world")
	res := New(Options{ExcerptLimit: 40}).ParseBytes([]byte(first + second))
	require.Equal(t, strings.TrimSpace(first)+"\n", res.Excerpt[:len(first)-1])
	require.Len(t, res.Excerpt, 40)
	require.True(t, strings.HasPrefix(strings.TrimSpace(second), res.Excerpt[len(first)-1:]))
	require.Equal(t, 2, res.Messages["GPTXT"])
}

func TestParseClock(t *testing.T) {
	sod, ok := parseClock("123519.25")
	require.True(t, ok)
	require.InDelta(t, 12*3600+35*60+19.25, sod, 1e-9)

	for _, bad := range []string{"", "12351", "2460xx", "246000", "126000"} {
		_, ok := parseClock(bad)
		require.False(t, ok, "input %q", bad)
	}
}
