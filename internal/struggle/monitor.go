package struggle

import (
	"time"

	"github.com/chatterling/engine/internal/profile"
)

// Directive is the monitor's advisory output. The orchestrator decides
// how (and whether) to act on it; the monitor never mutates state.
type Directive string

const (
	// DirectiveNone means carry on unchanged.
	DirectiveNone Directive = "none"

	// DirectiveEncourage shows a supportive message without any
	// difficulty change.
	DirectiveEncourage Directive = "encourage"

	// DirectiveSimplify drops the session target level to the learner's
	// current level.
	DirectiveSimplify Directive = "simplify"

	// DirectiveChallenge raises the session target level.
	DirectiveChallenge Directive = "challenge"

	// DirectiveSuggestBreak asks the learner to pause the session.
	DirectiveSuggestBreak Directive = "suggest_break"
)

// Risk thresholds for directive selection.
const (
	breakThreshold     = 0.8
	struggleThreshold  = 0.5
	challengeThreshold = 0.3
)

// Decide maps the current risk score and signal window to a directive.
func Decide(risk float64, window *Window) Directive {
	switch {
	case risk > breakThreshold:
		return DirectiveSuggestBreak
	case risk > struggleThreshold && IsRisingNow(window):
		return DirectiveSimplify
	case risk > struggleThreshold:
		return DirectiveEncourage
	case risk < challengeThreshold && window.Has(SignalFast):
		return DirectiveChallenge
	default:
		return DirectiveNone
	}
}

// Monitor holds one session's rolling signal window and weight
// configuration. One monitor per active session; not safe for concurrent
// use (the orchestrator serializes per learner).
type Monitor struct {
	window  *Window
	weights Weights
}

// NewMonitor creates a monitor with a fresh window.
func NewMonitor(weights Weights, windowSize int) *Monitor {
	return &Monitor{
		window:  NewWindow(windowSize),
		weights: weights,
	}
}

// Observe adds signals to the window.
func (m *Monitor) Observe(signals ...Signal) {
	for _, s := range signals {
		m.window.Add(s)
	}
}

// Window exposes the rolling window for stats computation.
func (m *Monitor) Window() *Window { return m.window }

// Assess computes the risk score and directive for the current window.
func (m *Monitor) Assess(p *profile.Profile, now time.Time) (float64, Directive) {
	risk := RiskScore(m.weights, p, m.window, now)
	return risk, Decide(risk, m.window)
}
