package parser

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func mixedRecording() []byte {
	return concat(
		[]byte("garbage\x00\x01"),
		[]byte(nmeaLine("GPGGA,120000,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")),
		[]byte(nmeaLine("GPGSA,A,3,03,05,07,,,,,,,,,,2.5,1.3,2.1")),
		[]byte(nmeaLine("GPGSV,1,1,03,03,40,120,45,05,20,090,40,07,60,010,38")),
		navPVT(3, 0x01),
		navStatus(1),
		secSigV1(1),
		[]byte{0xB5}, // stray half sync
		sbfBlock(sbfRFStatus, sbfPayload(12, 43200_000)),
		[]byte(nmeaLine("GPGGA,120001,4807.039,N,01131.001,E,1,08,0.9,545.5,M,46.9,M,,")),
		ubxFrame(0x0A, 0x04, []byte{9, 9}),
		[]byte(nmeaLine("GPGGA,120002,4807.040,N,01131.002,E,1,08,0.9,545.6,M,46.9,M,,")),
	)
}

func TestParse_MixedRecording(t *testing.T) {
	res := ParseBytes(mixedRecording())

	require.Len(t, res.Epochs, 3)
	first := res.Epochs[0]
	require.Equal(t, "12:00:00", first.Timestamp)
	require.Equal(t, 3, first.SatsUsed)
	require.Equal(t, 3, first.SatsTracked)
	require.True(t, first.FixValid)
	require.Equal(t, SpoofSafe, first.SpoofPrimary)
	require.Equal(t, SpoofSafe, first.SpoofSecondary)

	for i, e := range res.Epochs {
		require.GreaterOrEqual(t, e.OffsetSec, 0.0)
		if i > 0 {
			require.GreaterOrEqual(t, e.OffsetSec, res.Epochs[i-1].OffsetSec)
		}
		require.True(t, e.FixValid, "epoch %d carries fix-valid", i)
		require.Equal(t, 3, e.FixType)
	}

	require.Equal(t, map[string]int{
		"GPGGA":          3,
		"GPGSA":          1,
		"GPGSV":          1,
		"UBX-NAV-PVT":    1,
		"UBX-NAV-STATUS": 1,
		"UBX-SEC-SIG":    1,
		"UBX-0A-04":      1,
		"SBF-RFStatus":   1,
	}, res.Messages)
	require.Equal(t, 5, res.Stats.NMEASentences)
	require.Equal(t, 4, res.Stats.UBXFrames)
	require.Equal(t, 1, res.Stats.SBFBlocks)
	require.Contains(t, res.Excerpt, "$GPGSV,1,1,03")
}

func TestParse_Idempotent(t *testing.T) {
	in := mixedRecording()
	p := New(Options{})
	require.Equal(t, p.ParseBytes(in), p.ParseBytes(in))
}

func TestParse_ConcurrentTasksIndependent(t *testing.T) {
	in := mixedRecording()
	p := New(Options{})
	want := p.ParseBytes(in)

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.ParseBytes(in)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		require.Equal(t, want, r)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	res := ParseBytes(nil)
	require.Empty(t, res.Epochs)
	require.NotNil(t, res.Messages)
	require.Empty(t, res.Messages)
	require.Empty(t, res.Excerpt)
}

func TestParse_NoiseOnly(t *testing.T) {
	noise := bytes.Repeat([]byte{0x00, 0xB5, '$', 0x62, '@', 0xFF}, 64)
	res := ParseBytes(noise)
	require.Empty(t, res.Epochs)
	require.Equal(t, len(noise), res.Stats.Bytes)
	require.Equal(t, len(noise), res.Stats.SkippedBytes)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestParseReader(t *testing.T) {
	res, err := Parse(bytes.NewReader([]byte(ggaScenario)))
	require.NoError(t, err)
	require.Len(t, res.Epochs, 1)

	_, err = Parse(failingReader{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "device gone")
}

func TestNew_Defaults(t *testing.T) {
	opts := New(Options{}).Options()
	require.Equal(t, DefaultExcerptLimit, opts.ExcerptLimit)
	require.Equal(t, defaultNMEALookahead, opts.NMEALookahead)
}
