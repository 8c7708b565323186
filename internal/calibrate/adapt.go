package calibrate

import (
	"github.com/chatterling/engine/internal/profile"
	"github.com/chatterling/engine/internal/srs"
)

// In-session adaptation steps. Climbing is slower than backing off: a
// struggling learner gets relief faster than a cruising learner gets
// harder content.
const (
	adaptRaise = 0.2
	adaptDrop  = 0.3

	raiseAccuracy = 0.9
	raiseHelpRate = 0.1
	dropAccuracy  = 0.6
	dropHelpRate  = 0.3
)

// WindowStats summarizes the recent outcome window for adaptation.
type WindowStats struct {
	Accuracy float64
	HelpRate float64
}

// Adapt nudges the session target level based on the rolling window:
// high accuracy with little help raises it, low accuracy or heavy help
// lowers it, anything in between leaves it unchanged.
func Adapt(targetLevel float64, stats WindowStats) float64 {
	switch {
	case stats.Accuracy >= raiseAccuracy && stats.HelpRate < raiseHelpRate:
		return clampLevel(targetLevel + adaptRaise)
	case stats.Accuracy < dropAccuracy || stats.HelpRate > dropHelpRate:
		return clampLevel(targetLevel - adaptDrop)
	default:
		return targetLevel
	}
}

// ShouldDropBack reports whether the learner should be moved back to
// easier content outright: three of the last five outcomes wrong, a high
// affective-filter risk, or persistently low confidence.
func ShouldDropBack(p *profile.Profile, recent []srs.Outcome) bool {
	if p.RiskScore > 0.7 {
		return true
	}
	if p.AvgConfidence < 0.4 {
		return true
	}

	last := recent
	if len(last) > 5 {
		last = last[len(last)-5:]
	}
	wrong := 0
	for _, o := range last {
		if !o.Correct {
			wrong++
		}
	}
	return wrong >= 3
}
