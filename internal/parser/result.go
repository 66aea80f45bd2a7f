package parser

// SpoofState is a receiver-reported spoofing confidence.
type SpoofState int

const (
	SpoofUnknown   SpoofState = 0
	SpoofSafe      SpoofState = 1
	SpoofIndicated SpoofState = 2
	SpoofConfirmed SpoofState = 3
)

// Epoch is one committed navigation epoch. Epochs are never modified after
// they are appended to a Result.
type Epoch struct {
	Timestamp string  `json:"timestamp"` // "HH:MM:SS"
	OffsetSec float64 `json:"offset_sec"`

	LatDeg *float64 `json:"lat_deg,omitempty"`
	LonDeg *float64 `json:"lon_deg,omitempty"`
	AltM   *float64 `json:"alt_m,omitempty"`

	FixQuality  int `json:"fix_quality"`
	SatsUsed    int `json:"sats_used"`
	SatsTracked int `json:"sats_tracked"`

	// CN0Avg, CN0Top3 and CN0Max are computed from the per-satellite samples
	// (NMEA GSV and SBF MeasEpoch). UBXCN0 is the UBX-NAV-SIG GPS L1C/A mean.
	CN0Avg  float64 `json:"cn0_avg"`
	CN0Top3 float64 `json:"cn0_top3"`
	CN0Max  float64 `json:"cn0_max"`
	UBXCN0  float64 `json:"ubx_cn0"`

	SpoofPrimary   SpoofState `json:"spoof_primary"`
	SpoofSecondary SpoofState `json:"spoof_secondary"`

	FixType  int  `json:"fix_type"`
	FixValid bool `json:"fix_valid"`
}

// Stats describes how the input bytes were spent.
type Stats struct {
	Bytes            int `json:"bytes"`
	SkippedBytes     int `json:"skipped_bytes"`
	NMEASentences    int `json:"nmea_sentences"`
	UBXFrames        int `json:"ubx_frames"`
	SBFBlocks        int `json:"sbf_blocks"`
	Truncated        int `json:"truncated"`
	ChecksumMismatch int `json:"checksum_mismatch"`
}

// Result is the full output of one parse task.
type Result struct {
	Epochs   []Epoch        `json:"epochs"`
	Messages map[string]int `json:"messages"`
	Excerpt  string         `json:"excerpt,omitempty"`
	Stats    Stats          `json:"stats"`
}

// MaxSpoof returns the worse of the two spoofing indicators.
func (e Epoch) MaxSpoof() SpoofState {
	if e.SpoofSecondary > e.SpoofPrimary {
		return e.SpoofSecondary
	}
	return e.SpoofPrimary
}
