package parser

import "sort"

// Primary constellation PRN range (GPS).
const (
	minPrimaryPRN = 1
	maxPrimaryPRN = 32
)

func isPrimaryPRN(prn int) bool {
	return prn >= minPrimaryPRN && prn <= maxPrimaryPRN
}

// satTracker holds the per-epoch satellite sets. It is cleared on every flush.
type satTracker struct {
	tracked map[int]struct{}
	used    map[int]struct{}
	samples []float64
}

func newSatTracker() *satTracker {
	return &satTracker{
		tracked: make(map[int]struct{}),
		used:    make(map[int]struct{}),
	}
}

// observe records a satellite seen with a usable signal.
func (t *satTracker) observe(prn int, cn0 float64) {
	t.tracked[prn] = struct{}{}
	t.samples = append(t.samples, cn0)
}

func (t *satTracker) markUsed(prn int) {
	t.used[prn] = struct{}{}
}

func (t *satTracker) trackedCount() int { return len(t.tracked) }
func (t *satTracker) usedCount() int    { return len(t.used) }

func (t *satTracker) reset() {
	clear(t.tracked)
	clear(t.used)
	t.samples = t.samples[:0]
}

// top3 averages the three strongest samples (fewer if fewer exist).
func (t *satTracker) top3() float64 {
	if len(t.samples) == 0 {
		return 0
	}
	s := append([]float64(nil), t.samples...)
	sort.Sort(sort.Reverse(sort.Float64Slice(s)))
	if len(s) > 3 {
		s = s[:3]
	}
	return mean(s)
}

func (t *satTracker) mean() float64 {
	return mean(t.samples)
}

func (t *satTracker) max() float64 {
	m := 0.0
	for _, v := range t.samples {
		if v > m {
			m = v
		}
	}
	return m
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
