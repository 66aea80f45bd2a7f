package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSatTracker_Top3(t *testing.T) {
	cases := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{name: "none", samples: nil, want: 0},
		{name: "one", samples: []float64{40}, want: 40},
		{name: "two", samples: []float64{40, 45}, want: 42.5},
		{name: "three", samples: []float64{30, 40, 50}, want: 40},
		{name: "more", samples: []float64{20, 48, 30, 45, 42}, want: 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newSatTracker()
			for i, s := range tc.samples {
				tr.observe(i+1, s)
			}
			require.InDelta(t, tc.want, tr.top3(), 1e-9)
		})
	}
}

func TestSatTracker_DeduplicatesAndResets(t *testing.T) {
	tr := newSatTracker()
	tr.observe(3, 40)
	tr.observe(3, 42)
	tr.markUsed(3)
	tr.markUsed(3)
	require.Equal(t, 1, tr.trackedCount())
	require.Equal(t, 1, tr.usedCount())
	require.InDelta(t, 42, tr.max(), 1e-9)

	tr.reset()
	require.Zero(t, tr.trackedCount())
	require.Zero(t, tr.usedCount())
	require.Zero(t, tr.top3())
}
