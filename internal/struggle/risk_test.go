package struggle

import (
	"math"
	"testing"
	"time"

	"github.com/chatterling/engine/internal/profile"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func window(kinds ...SignalKind) *Window {
	w := NewWindow(DefaultWindowSize)
	for _, k := range kinds {
		w.Add(Signal{Kind: k, At: testNow})
	}
	return w
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for i := 0; i < 5; i++ {
		w.Add(Signal{Kind: SignalWrong, ChunkID: string(rune('a' + i)), At: testNow})
	}
	if w.Len() != 3 {
		t.Fatalf("Len = %d, want 3", w.Len())
	}
	last := w.Last(3)
	if last[0].ChunkID != "c" {
		t.Errorf("oldest surviving signal = %q, want c", last[0].ChunkID)
	}
}

func TestWindowCount(t *testing.T) {
	w := window(SignalWrong, SignalHelp, SignalWrong, SignalSlow)
	if got := w.Count(SignalWrong, 10); got != 2 {
		t.Errorf("Count(wrong) = %d, want 2", got)
	}
	if got := w.Count(SignalWrong, 1); got != 0 {
		t.Errorf("Count(wrong, last 1) = %d, want 0", got)
	}
	if !w.Has(SignalSlow) {
		t.Error("Has(slow) = false, want true")
	}
	if w.Has(SignalFast) {
		t.Error("Has(fast) = true, want false")
	}
}

func TestRiskScoreTermsAreCapped(t *testing.T) {
	p := profile.New("kid-1", "fr", testNow)
	p.AvgConfidence = 0 // maximal confidence term

	// Half the window is help requests, the freshest five are all wrong.
	w := NewWindow(DefaultWindowSize)
	for i := 0; i < 5; i++ {
		w.Add(Signal{Kind: SignalHelp, At: testNow})
	}
	for i := 0; i < 5; i++ {
		w.Add(Signal{Kind: SignalWrong, At: testNow})
	}

	weights := DefaultWeights()
	got := RiskScore(weights, p, w, testNow)

	// wrong term caps at 0.3, help at 0.2, confidence at 0.3, no gap term.
	want := weights.WrongCap + weights.HelpCap + weights.ConfidenceCap
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RiskScore = %v, want %v", got, want)
	}
	if got > 1.0 {
		t.Errorf("RiskScore = %v exceeds 1.0", got)
	}
}

func TestRiskScoreWrongTerm(t *testing.T) {
	p := profile.New("kid-1", "fr", testNow)
	p.AvgConfidence = 0.5 // no confidence term

	w := window(SignalWrong, SignalWrong)
	got := RiskScore(DefaultWeights(), p, w, testNow)

	// 2 wrong * 0.06 + help ratio 0 + no gap.
	if math.Abs(got-0.12) > 1e-9 {
		t.Errorf("RiskScore = %v, want 0.12", got)
	}
}

func TestRiskScoreGapTerm(t *testing.T) {
	weights := DefaultWeights()
	p := profile.New("kid-1", "fr", testNow)
	p.AvgConfidence = 0.5
	p.ApplySessionStats(profile.SessionStats{SessionID: "s1"}, testNow)

	w := NewWindow(DefaultWindowSize)

	// Within the grace period: no gap contribution.
	got := RiskScore(weights, p, w, testNow.Add(48*time.Hour))
	if got != 0 {
		t.Errorf("RiskScore inside grace = %v, want 0", got)
	}

	// Far beyond the full-gap horizon: capped contribution.
	got = RiskScore(weights, p, w, testNow.Add(30*24*time.Hour))
	if math.Abs(got-weights.GapCap) > 1e-9 {
		t.Errorf("RiskScore after long gap = %v, want %v", got, weights.GapCap)
	}
}

func TestIsRisingNow(t *testing.T) {
	tests := []struct {
		name string
		w    *Window
		want bool
	}{
		{"three wrong", window(SignalWrong, SignalWrong, SignalWrong), true},
		{"two wrong two help", window(SignalWrong, SignalHelp, SignalWrong, SignalHelp), true},
		{"two wrong two slow", window(SignalSlow, SignalWrong, SignalSlow, SignalWrong), true},
		{"two wrong alone", window(SignalWrong, SignalWrong), false},
		{"quiet", window(SignalFast), false},
		{"empty", NewWindow(DefaultWindowSize), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRisingNow(tt.w); got != tt.want {
				t.Errorf("IsRisingNow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		risk float64
		w    *Window
		want Directive
	}{
		{"very high risk suggests break", 0.85, window(SignalWrong), DirectiveSuggestBreak},
		{"high and rising simplifies", 0.6, window(SignalWrong, SignalWrong, SignalWrong), DirectiveSimplify},
		{"high but stable encourages", 0.6, window(SignalWrong), DirectiveEncourage},
		{"low risk with fast answers challenges", 0.1, window(SignalFast), DirectiveChallenge},
		{"low risk without speed holds", 0.1, window(), DirectiveNone},
		{"middle holds", 0.4, window(SignalWrong), DirectiveNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.risk, tt.w); got != tt.want {
				t.Errorf("Decide(%v) = %s, want %s", tt.risk, got, tt.want)
			}
		})
	}
}

func TestMonitorAssess(t *testing.T) {
	m := NewMonitor(DefaultWeights(), DefaultWindowSize)
	p := profile.New("kid-1", "fr", testNow)
	p.AvgConfidence = 0.5

	m.Observe(
		Signal{Kind: SignalWrong, At: testNow},
		Signal{Kind: SignalWrong, At: testNow},
		Signal{Kind: SignalWrong, At: testNow},
	)

	risk, directive := m.Assess(p, testNow)
	if risk <= 0 {
		t.Errorf("risk = %v, want > 0 after a wrong streak", risk)
	}
	if directive == DirectiveChallenge {
		t.Errorf("directive = %s after a wrong streak", directive)
	}
}
