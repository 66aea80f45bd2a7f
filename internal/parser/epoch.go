package parser

import (
	"fmt"
	"math"
	"strings"
)

const secondsPerDay = 86400

// carried holds the last known value of the fields that survive an epoch
// boundary when no decoder refreshed them.
type carried struct {
	spoofSecondary SpoofState
	ubxCN0         float64
	fixType        int
	fixValid       bool
}

// draft is the epoch being assembled. Pointer fields are nil until a decoder
// sets them during the current epoch.
type draft struct {
	timestamp string
	offset    *float64

	latDeg *float64
	lonDeg *float64
	altM   *float64

	fixQuality int
	// satsTotal is provisional: a non-empty used set wins at flush time.
	satsTotal int

	spoofPrimary   SpoofState
	spoofSecondary *SpoofState
	ubxCN0         *float64
	fixType        *int
	fixValid       *bool
}

// Accumulator owns all mutable state of a single parse task. Decoders receive
// it by pointer and never keep a reference past their decode call.
type Accumulator struct {
	draft draft
	carry carried
	sats  *satTracker

	anchorSOD float64
	anchored  bool

	lastTOW uint32
	haveTOW bool

	epochs   []Epoch
	messages map[string]int

	excerpt      strings.Builder
	excerptLimit int

	stats Stats
}

func newAccumulator(excerptLimit int) *Accumulator {
	return &Accumulator{
		sats:         newSatTracker(),
		messages:     make(map[string]int),
		excerptLimit: excerptLimit,
	}
}

func (a *Accumulator) count(label string) {
	if label == "" {
		return
	}
	a.messages[label]++
}

// appendExcerpt adds line and a newline, cutting the last line that would
// pass the limit.
func (a *Accumulator) appendExcerpt(line string) {
	room := a.excerptLimit - a.excerpt.Len()
	if line == "" || room <= 0 {
		return
	}
	if len(line) >= room {
		a.excerpt.WriteString(line[:room])
		return
	}
	a.excerpt.WriteString(line)
	a.excerpt.WriteByte('\n')
}

// stampTime sets the draft's clock from seconds-of-day. The first stamped
// time of the task becomes the offset anchor.
func (a *Accumulator) stampTime(sod float64) {
	if !a.anchored {
		a.anchorSOD = sod
		a.anchored = true
	}
	off := sod - a.anchorSOD
	if off < 0 {
		off += secondsPerDay
	}
	a.draft.timestamp = formatClock(sod)
	a.draft.offset = &off
}

// observeTOW handles the SBF time-of-week that heads every block.
func (a *Accumulator) observeTOW(towMs uint32) {
	if a.haveTOW && towMs != a.lastTOW {
		a.flush()
	}
	a.lastTOW = towMs
	a.haveTOW = true
	if a.draft.offset == nil {
		a.stampTime(float64(towMs%(secondsPerDay*1000)) / 1000)
	}
}

// flush commits the draft as an Epoch when it carries a time, folds fresh
// fields into the carry-forward state and starts an empty draft.
func (a *Accumulator) flush() {
	d := a.draft
	if d.offset != nil {
		e := Epoch{
			Timestamp:      d.timestamp,
			OffsetSec:      *d.offset,
			LatDeg:         d.latDeg,
			LonDeg:         d.lonDeg,
			AltM:           d.altM,
			FixQuality:     d.fixQuality,
			SatsUsed:       d.satsTotal,
			SatsTracked:    a.sats.trackedCount(),
			CN0Avg:         round1(a.sats.mean()),
			CN0Top3:        round1(a.sats.top3()),
			CN0Max:         a.sats.max(),
			SpoofPrimary:   d.spoofPrimary,
			SpoofSecondary: a.carry.spoofSecondary,
			UBXCN0:         a.carry.ubxCN0,
			FixType:        a.carry.fixType,
			FixValid:       a.carry.fixValid,
		}
		if n := a.sats.usedCount(); n > 0 {
			e.SatsUsed = n
		}
		if d.spoofSecondary != nil {
			e.SpoofSecondary = *d.spoofSecondary
		}
		if d.ubxCN0 != nil {
			e.UBXCN0 = *d.ubxCN0
		}
		if d.fixType != nil {
			e.FixType = *d.fixType
		}
		if d.fixValid != nil {
			e.FixValid = *d.fixValid
		}
		a.epochs = append(a.epochs, e)
	}

	if d.spoofSecondary != nil {
		a.carry.spoofSecondary = *d.spoofSecondary
	}
	if d.ubxCN0 != nil {
		a.carry.ubxCN0 = *d.ubxCN0
	}
	if d.fixType != nil {
		a.carry.fixType = *d.fixType
	}
	if d.fixValid != nil {
		a.carry.fixValid = *d.fixValid
	}

	a.sats.reset()
	a.draft = draft{}
}

func (a *Accumulator) result() Result {
	return Result{
		Epochs:   a.epochs,
		Messages: a.messages,
		Excerpt:  a.excerpt.String(),
		Stats:    a.stats,
	}
}

func formatClock(sod float64) string {
	s := int(math.Floor(sod)) % secondsPerDay
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
