// Package report derives consumer-facing summaries from a parse result: the
// spoofing events and the short statistics block that accompanies the text
// excerpt handed to report generators.
package report

import (
	"sort"

	"gnsslog/internal/parser"
)

// DefaultExcerptChars bounds the excerpt head included in a Report.
const DefaultExcerptChars = 4000

// SpoofEvent is a contiguous run of epochs whose worse spoofing indicator is
// at least "indicated".
type SpoofEvent struct {
	Start          string            `json:"start"`
	End            string            `json:"end"`
	StartOffsetSec float64           `json:"start_offset_sec"`
	EndOffsetSec   float64           `json:"end_offset_sec"`
	Epochs         int               `json:"epochs"`
	Peak           parser.SpoofState `json:"peak"`
}

type MessageCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Report struct {
	Epochs        int     `json:"epochs"`
	DurationSec   float64 `json:"duration_sec"`
	FirstTime     string  `json:"first_time,omitempty"`
	LastTime      string  `json:"last_time,omitempty"`
	FixValidRatio float64 `json:"fix_valid_ratio"`
	PositionRatio float64 `json:"position_ratio"`

	MeanTop3CN0 float64 `json:"mean_top3_cn0"`
	MaxCN0      float64 `json:"max_cn0"`
	MinSatsUsed int     `json:"min_sats_used"`
	MaxSatsUsed int     `json:"max_sats_used"`

	PeakSpoof   parser.SpoofState `json:"peak_spoof"`
	SpoofEvents []SpoofEvent      `json:"spoof_events"`

	Messages []MessageCount `json:"messages"`
	Stats    parser.Stats   `json:"stats"`
	Excerpt  string         `json:"excerpt,omitempty"`
}

// SpoofEvents groups consecutive epochs with max(primary, secondary) >= 2.
func SpoofEvents(epochs []parser.Epoch) []SpoofEvent {
	out := []SpoofEvent{}
	var cur *SpoofEvent
	for _, e := range epochs {
		st := e.MaxSpoof()
		if st < parser.SpoofIndicated {
			cur = nil
			continue
		}
		if cur == nil {
			out = append(out, SpoofEvent{
				Start:          e.Timestamp,
				StartOffsetSec: e.OffsetSec,
			})
			cur = &out[len(out)-1]
		}
		cur.End = e.Timestamp
		cur.EndOffsetSec = e.OffsetSec
		cur.Epochs++
		if st > cur.Peak {
			cur.Peak = st
		}
	}
	return out
}

// Build summarizes res. excerptChars <= 0 selects DefaultExcerptChars.
func Build(res parser.Result, excerptChars int) Report {
	if excerptChars <= 0 {
		excerptChars = DefaultExcerptChars
	}
	r := Report{
		Epochs:      len(res.Epochs),
		SpoofEvents: SpoofEvents(res.Epochs),
		Messages:    sortedMessages(res.Messages),
		Stats:       res.Stats,
		Excerpt:     head(res.Excerpt, excerptChars),
	}
	if len(res.Epochs) == 0 {
		return r
	}

	first, last := res.Epochs[0], res.Epochs[len(res.Epochs)-1]
	r.FirstTime = first.Timestamp
	r.LastTime = last.Timestamp
	r.DurationSec = last.OffsetSec - first.OffsetSec
	r.MinSatsUsed = first.SatsUsed

	valid, positioned := 0, 0
	top3Sum := 0.0
	for _, e := range res.Epochs {
		if e.FixValid {
			valid++
		}
		if e.LatDeg != nil && e.LonDeg != nil {
			positioned++
		}
		top3Sum += e.CN0Top3
		if e.CN0Max > r.MaxCN0 {
			r.MaxCN0 = e.CN0Max
		}
		if e.SatsUsed < r.MinSatsUsed {
			r.MinSatsUsed = e.SatsUsed
		}
		if e.SatsUsed > r.MaxSatsUsed {
			r.MaxSatsUsed = e.SatsUsed
		}
		if st := e.MaxSpoof(); st > r.PeakSpoof {
			r.PeakSpoof = st
		}
	}
	n := float64(len(res.Epochs))
	r.FixValidRatio = float64(valid) / n
	r.PositionRatio = float64(positioned) / n
	r.MeanTop3CN0 = top3Sum / n
	return r
}

func sortedMessages(m map[string]int) []MessageCount {
	out := make([]MessageCount, 0, len(m))
	for k, v := range m {
		out = append(out, MessageCount{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// head cuts s to at most n bytes, backing up to a line boundary when one exists.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == '\n' {
			return cut[:i+1]
		}
	}
	return cut
}
