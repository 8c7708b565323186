package struggle

import (
	"time"

	"github.com/chatterling/engine/internal/profile"
)

// Weights caps each risk term independently so no single behavior can
// saturate the score on its own.
type Weights struct {
	// WrongPerSignal is added per wrong answer among the last five
	// signals, up to WrongCap.
	WrongPerSignal float64
	WrongCap       float64

	// HelpCap bounds the linear help-ratio term.
	HelpCap float64

	// ConfidenceCap bounds the low-confidence term, linear in
	// (0.5 − confidence) when confidence is below 0.5.
	ConfidenceCap float64

	// GapCap bounds the absence term; GapGraceDays pass free, then the
	// term grows linearly, saturating at GapFullDays.
	GapCap       float64
	GapGraceDays float64
	GapFullDays  float64
}

// DefaultWeights returns the calibrated term caps.
func DefaultWeights() Weights {
	return Weights{
		WrongPerSignal: 0.06,
		WrongCap:       0.3,
		HelpCap:        0.2,
		ConfidenceCap:  0.3,
		GapCap:         0.1,
		GapGraceDays:   3,
		GapFullDays:    10,
	}
}

// RiskScore computes the affective-filter risk in [0, 1] from the signal
// window and profile state: a weighted sum of recent wrong answers, help
// reliance, low confidence, and time away, each term capped.
func RiskScore(w Weights, p *profile.Profile, window *Window, now time.Time) float64 {
	score := 0.0

	wrong := float64(window.Count(SignalWrong, 5)) * w.WrongPerSignal
	score += minf(wrong, w.WrongCap)

	if n := window.Len(); n > 0 {
		helpRatio := float64(window.Count(SignalHelp, n)) / float64(n)
		score += minf(helpRatio*w.HelpCap/0.5, w.HelpCap)
	}

	if p.AvgConfidence < 0.5 {
		low := (0.5 - p.AvgConfidence) / 0.5
		score += minf(low*w.ConfidenceCap, w.ConfidenceCap)
	}

	if gap := p.DaysSinceLastSession(now); gap > w.GapGraceDays {
		span := w.GapFullDays - w.GapGraceDays
		if span <= 0 {
			span = 1
		}
		score += minf((gap-w.GapGraceDays)/span*w.GapCap, w.GapCap)
	}

	return clamp01(score)
}

// IsRisingNow reports whether struggle is escalating within the current
// window: a burst of wrong answers, or wrong answers paired with help
// requests or slow responses.
func IsRisingNow(window *Window) bool {
	wrong := window.Count(SignalWrong, 10)
	if wrong >= 3 {
		return true
	}
	if window.Count(SignalHelp, 10) >= 2 && wrong >= 2 {
		return true
	}
	if window.Count(SignalSlow, 10) >= 2 && wrong >= 2 {
		return true
	}
	return false
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
