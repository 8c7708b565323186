package calibrate

import "github.com/chatterling/engine/internal/profile"

// Level bounds of the 1–5 band scale.
const (
	MinLevel = 1.0
	MaxLevel = 5.0
)

// BandStep is one row of the acquired-count → band lookup table.
type BandStep struct {
	MinAcquired int
	Band        float64
}

// DefaultBandTable maps acquired-chunk counts to competence bands. The
// table is monotonic: more acquired chunks never lowers the band. Fixed
// at calibration time; overridable through the tuning config.
var DefaultBandTable = BandTable{
	{MinAcquired: 0, Band: 1},
	{MinAcquired: 30, Band: 2},
	{MinAcquired: 90, Band: 3},
	{MinAcquired: 200, Band: 4},
	{MinAcquired: 400, Band: 5},
}

// BandTable is a monotonic step function on acquired-chunk count.
type BandTable []BandStep

// Band returns the band for the given acquired-chunk count.
func (t BandTable) Band(acquired int) float64 {
	band := MinLevel
	for _, step := range t {
		if acquired >= step.MinAcquired {
			band = step.Band
		}
	}
	return band
}

// CurrentLevel derives the learner's competence level from the acquired
// band, nudged up by confidence and down by affective-filter risk, and
// clamped to [MinLevel, MaxLevel]. This is the only way a level is ever
// computed; nothing sets it directly.
func (t BandTable) CurrentLevel(p *profile.Profile) float64 {
	level := t.Band(p.ChunkCounts.Acquired) + p.AvgConfidence*0.3 - p.RiskScore*0.2
	return clampLevel(level)
}

// TargetLevel is the "i+1" band: one step above current competence,
// capped at the top band.
func (t BandTable) TargetLevel(p *profile.Profile) float64 {
	target := t.CurrentLevel(p) + 1
	if target > MaxLevel {
		return MaxLevel
	}
	return target
}

// CEFRLabel maps a band to the CEFR rung shown in the UI.
func CEFRLabel(level float64) string {
	switch {
	case level < 1.5:
		return "Pre-A1"
	case level < 2.5:
		return "A1"
	case level < 3.5:
		return "A2"
	case level < 4.5:
		return "B1"
	default:
		return "B2"
	}
}

// CEFRScore projects a band onto the 0–100 progress scale shown in the UI.
func CEFRScore(level float64) float64 {
	if level <= 0 {
		return 0
	}
	return clampLevel(level) * 20
}

func clampLevel(v float64) float64 {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}
