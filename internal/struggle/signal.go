package struggle

import "time"

// SignalKind classifies one in-session behavior signal.
type SignalKind string

const (
	SignalWrong SignalKind = "wrong"
	SignalHelp  SignalKind = "help"
	SignalSlow  SignalKind = "slow"
	SignalFast  SignalKind = "fast"
)

// Signal is an ephemeral, session-scoped event. Signals live only in the
// rolling window; nothing persists them beyond their aggregate
// contributions to the profile counters.
type Signal struct {
	Kind    SignalKind
	ChunkID string
	At      time.Time
}

// DefaultWindowSize is the number of recent signals the monitor keeps.
const DefaultWindowSize = 10

// Window is a bounded rolling buffer of the most recent signals.
type Window struct {
	signals []Signal
	max     int
}

// NewWindow creates a window holding up to max signals.
func NewWindow(max int) *Window {
	if max <= 0 {
		max = DefaultWindowSize
	}
	return &Window{max: max}
}

// Add appends a signal, evicting the oldest when full.
func (w *Window) Add(s Signal) {
	w.signals = append(w.signals, s)
	if len(w.signals) > w.max {
		w.signals = w.signals[len(w.signals)-w.max:]
	}
}

// Len returns the number of buffered signals.
func (w *Window) Len() int { return len(w.signals) }

// Last returns the most recent n signals, oldest first.
func (w *Window) Last(n int) []Signal {
	if n >= len(w.signals) {
		return w.signals
	}
	return w.signals[len(w.signals)-n:]
}

// Count returns how many of the last n signals are of the given kind.
func (w *Window) Count(kind SignalKind, n int) int {
	count := 0
	for _, s := range w.Last(n) {
		if s.Kind == kind {
			count++
		}
	}
	return count
}

// Has reports whether any buffered signal is of the given kind.
func (w *Window) Has(kind SignalKind) bool {
	return w.Count(kind, len(w.signals)) > 0
}
