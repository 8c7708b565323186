package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatterling/engine/internal/calibrate"
	"github.com/chatterling/engine/internal/chunkgen"
	"github.com/chatterling/engine/internal/content"
	"github.com/chatterling/engine/internal/profile"
	"github.com/chatterling/engine/internal/srs"
	"github.com/chatterling/engine/internal/struggle"
)

// Engine is the session orchestrator. It owns the composition of the
// repository, scheduler, calibrator, struggle monitor, and profile
// service, and is the only component that mutates profiles.
//
// All operations for one learner are serialized; operations for
// different learners run concurrently.
type Engine struct {
	repo       *content.Repository
	scheduler  *srs.Scheduler
	profiles   *profile.Service
	calibrator *calibrate.Calibrator
	generator  chunkgen.Generator
	sink       EventSink
	weights    struggle.Weights
	opts       Options
	now        func() time.Time

	mu       sync.Mutex
	learners map[string]*learnerState
}

// learnerState carries the per-learner lock and the active session.
type learnerState struct {
	mu sync.Mutex

	sessionID   string
	language    string
	topic       string
	targetLevel float64
	monitor     *struggle.Monitor
	outcomes    []srs.Outcome
	touched     map[string]bool
	startedAt   time.Time

	// appliedSessions makes EndSession idempotent per session ID.
	appliedSessions map[string]bool
}

// New creates an engine. generator and sink may be nil; a nil generator
// disables content generation and a nil sink discards events.
func New(
	repo *content.Repository,
	scheduler *srs.Scheduler,
	profiles *profile.Service,
	calibrator *calibrate.Calibrator,
	generator chunkgen.Generator,
	sink EventSink,
	opts Options,
) *Engine {
	if sink == nil {
		sink = discardSink{}
	}
	return &Engine{
		repo:       repo,
		scheduler:  scheduler,
		profiles:   profiles,
		calibrator: calibrator,
		generator:  generator,
		sink:       sink,
		weights:    struggle.DefaultWeights(),
		opts:       opts.withDefaults(),
		now:        time.Now,
		learners:   make(map[string]*learnerState),
	}
}

// WithClock overrides the engine clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithWeights overrides the struggle weights. Used by the tuning config.
func (e *Engine) WithWeights(w struggle.Weights) *Engine {
	e.weights = w
	return e
}

func (e *Engine) learner(learnerID string) *learnerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls, ok := e.learners[learnerID]
	if !ok {
		ls = &learnerState{appliedSessions: make(map[string]bool)}
		e.learners[learnerID] = ls
	}
	return ls
}

// PrepareSession assembles a session plan: passive decay runs first, then
// due reviews (fragile first), new content in the target band, and
// familiar context chunks. When the repository cannot fill the new-chunk
// quota, the generator is given a bounded budget to produce more; on
// timeout or failure the plan ships with repository content alone.
func (e *Engine) PrepareSession(ctx context.Context, learnerID, language, topic string) (*SessionPlan, error) {
	ls := e.learner(learnerID)
	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := e.now()

	p, err := e.profiles.LoadOrCreate(ctx, learnerID, language)
	if err != nil && !recoverable(err) {
		return nil, err
	}

	if _, err := e.scheduler.Decay(ctx, learnerID, now); err != nil {
		return nil, fmt.Errorf("session decay pass: %w", err)
	}

	if err := e.refreshCounts(ctx, p); err != nil {
		return nil, err
	}

	due, err := e.scheduler.Due(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	reviewStates := due
	if len(reviewStates) > e.opts.ReviewChunks {
		reviewStates = reviewStates[:e.opts.ReviewChunks]
	}
	reviewIDs := make([]string, len(reviewStates))
	for i, st := range reviewStates {
		reviewIDs[i] = st.ChunkID
	}
	reviews, err := e.repo.GetByIDs(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}

	newChunks, err := e.calibrator.SelectNewChunks(ctx, p, topic, e.opts.NewChunks)
	if err != nil {
		return nil, err
	}
	if len(newChunks) < e.opts.NewChunks && e.generator != nil {
		newChunks = e.generateNewChunks(ctx, p, topic, newChunks)
	}

	contextChunks, err := e.calibrator.SelectContextChunks(ctx, p, topic, e.opts.ContextChunks)
	if err != nil {
		return nil, err
	}

	current := e.calibrator.CurrentLevel(p)
	target := e.calibrator.TargetLevel(p)
	p.RecordLevel(current, now)
	if err := e.profiles.Save(ctx, p); err != nil && !recoverable(err) {
		return nil, err
	}

	ls.sessionID = uuid.NewString()
	ls.language = language
	ls.topic = topic
	ls.targetLevel = target
	ls.monitor = struggle.NewMonitor(e.weights, struggle.DefaultWindowSize)
	ls.outcomes = nil
	ls.touched = make(map[string]bool)
	ls.startedAt = now

	e.logSession(ctx, SessionEvent{
		SessionID: ls.sessionID,
		LearnerID: learnerID,
		Kind:      "start",
		At:        now,
	})

	return &SessionPlan{
		SessionID:     ls.sessionID,
		LearnerID:     learnerID,
		Language:      language,
		Topic:         topic,
		CurrentLevel:  current,
		TargetLevel:   target,
		ReviewChunks:  reviews,
		NewChunks:     newChunks,
		ContextChunks: contextChunks,
		DueCount:      len(due),
		CreatedAt:     now,
	}, nil
}

// generateNewChunks tops up the new-chunk quota from the generator under
// the configured budget. Generated chunks are persisted immediately so a
// later crash cannot orphan in-flight content. Any failure falls back to
// what the repository already provided.
func (e *Engine) generateNewChunks(ctx context.Context, p *profile.Profile, topic string, have []content.Chunk) []content.Chunk {
	missing := e.opts.NewChunks - len(have)
	if missing <= 0 {
		return have
	}

	exclude, err := e.seenTexts(ctx, p.LearnerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: seen-text lookup failed, generating without exclusions: %v\n", err)
	}
	for _, c := range have {
		exclude = append(exclude, c.Text)
	}

	target := e.calibrator.TargetLevel(p)
	spec := chunkgen.Spec{
		Language:   p.Language,
		Topic:      topic,
		Difficulty: content.ClampDifficulty(int(math.Round(target))),
		Interests:  topInterests(p, 3),
		Exclude:    exclude,
		Count:      missing,
	}

	genCtx, cancel := context.WithTimeout(ctx, e.opts.GeneratorBudget)
	defer cancel()

	generated, err := e.generator.Generate(genCtx, spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: chunk generation failed, continuing with repository content: %v\n", err)
		return have
	}

	seen := make(map[string]bool, len(have))
	for _, c := range have {
		seen[c.ID] = true
	}
	for _, c := range generated {
		stored, err := e.repo.Upsert(ctx, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: generated chunk not stored: %v\n", err)
			continue
		}
		if seen[stored.ID] {
			continue
		}
		seen[stored.ID] = true
		have = append(have, stored)
		if len(have) == e.opts.NewChunks {
			break
		}
	}
	return have
}

// ReportOutcome applies one answered activity: scheduler state advances,
// the struggle window and profile update, and the session target adapts.
// The result is always valid; a returned *srs.ErrSaveFailed or
// *profile.ErrSaveFailed means persistence lagged but the session can
// continue on in-memory state.
func (e *Engine) ReportOutcome(ctx context.Context, learnerID, chunkID string, o srs.Outcome) (*OutcomeResult, error) {
	ls := e.learner(learnerID)
	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := e.now()
	if ls.monitor == nil {
		ls.monitor = struggle.NewMonitor(e.weights, struggle.DefaultWindowSize)
	}
	if ls.touched == nil {
		ls.touched = make(map[string]bool)
	}

	ls.monitor.Observe(e.signalsFor(chunkID, o, now)...)

	var saveErr error
	st, tr, err := e.scheduler.Record(ctx, learnerID, chunkID, o)
	if err != nil {
		if !recoverable(err) {
			return nil, err
		}
		saveErr = err
	}

	ls.outcomes = append(ls.outcomes, o)
	ls.touched[chunkID] = true

	p, err := e.profiles.LoadOrCreate(ctx, learnerID, ls.language)
	if err != nil && !recoverable(err) {
		return nil, err
	}

	applyTransition(&p.ChunkCounts, tr)
	p.RecordOutcome(o.Correct, o.UsedHelp, now)
	p.RecordConfidence(st.Confidence(), now)

	if o.Correct {
		e.bumpChunkInterests(ctx, p, chunkID, now)
	}

	risk := struggle.RiskScore(e.weights, p, ls.monitor.Window(), now)
	p.SetRisk(risk, now)

	if ls.targetLevel == 0 {
		ls.targetLevel = e.calibrator.TargetLevel(p)
	}
	if len(ls.outcomes) >= e.opts.AdaptMinOutcomes {
		ls.targetLevel = calibrate.Adapt(ls.targetLevel, windowStats(ls.outcomes))
	}

	directive := struggle.Decide(risk, ls.monitor.Window())
	if directive == struggle.DirectiveNone && calibrate.ShouldDropBack(p, ls.outcomes) {
		directive = struggle.DirectiveSimplify
	}
	switch directive {
	case struggle.DirectiveSimplify:
		ls.targetLevel = e.calibrator.CurrentLevel(p)
		p.MarkStruggle(now)
	case struggle.DirectiveSuggestBreak:
		p.MarkStruggle(now)
	case struggle.DirectiveChallenge:
		if raised := ls.targetLevel + 0.2; raised <= calibrate.MaxLevel {
			ls.targetLevel = raised
		}
	}

	if err := e.profiles.Save(ctx, p); err != nil {
		if !recoverable(err) {
			return nil, err
		}
		if saveErr == nil {
			saveErr = err
		}
	}

	e.logAnswer(ctx, AnswerEvent{
		SessionID: ls.sessionID,
		LearnerID: learnerID,
		ChunkID:   chunkID,
		Correct:   o.Correct,
		UsedHelp:  o.UsedHelp,
		LatencyMs: o.LatencyMs,
		Status:    st.Status,
		Directive: directive,
		Risk:      risk,
		At:        now,
	})

	return &OutcomeResult{
		Status:        string(st.Status),
		StatusChanged: tr.From != tr.To,
		Directive:     directive,
		TargetLevel:   ls.targetLevel,
		Risk:          risk,
		NextReviewAt:  st.NextReviewAt,
	}, saveErr
}

// EndSession folds the session aggregates into the profile. Applying the
// same session ID twice is a no-op, so a retried call cannot double-count.
func (e *Engine) EndSession(ctx context.Context, learnerID string, stats profile.SessionStats) error {
	ls := e.learner(learnerID)
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if stats.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if ls.appliedSessions[stats.SessionID] {
		return nil
	}

	now := e.now()

	p, err := e.profiles.LoadOrCreate(ctx, learnerID, ls.language)
	if err != nil && !recoverable(err) {
		return err
	}

	if stats.ChunksTouched == 0 && stats.SessionID == ls.sessionID {
		stats.ChunksTouched = len(ls.touched)
	}

	p.ApplySessionStats(stats, now)
	if err := e.refreshCounts(ctx, p); err != nil {
		return err
	}
	p.RecordLevel(e.calibrator.CurrentLevel(p), now)

	if err := e.profiles.Save(ctx, p); err != nil && !recoverable(err) {
		return err
	}

	ls.appliedSessions[stats.SessionID] = true
	if stats.SessionID == ls.sessionID {
		ls.sessionID = ""
		ls.monitor = nil
		ls.outcomes = nil
		ls.touched = nil
	}

	e.logSession(ctx, SessionEvent{
		SessionID:       stats.SessionID,
		LearnerID:       learnerID,
		Kind:            "end",
		DurationMinutes: stats.DurationMinutes,
		ChunksTouched:   stats.ChunksTouched,
		At:              now,
	})

	return nil
}

// DueCount reports how many chunks need review now. Feeds the "N items
// to review today" nudge.
func (e *Engine) DueCount(ctx context.Context, learnerID string) (int, error) {
	return e.scheduler.DueCount(ctx, learnerID)
}

// RunDecay applies passive decay outside a session, e.g. from the daily
// maintenance job. Idempotent for a fixed instant.
func (e *Engine) RunDecay(ctx context.Context, learnerID string) ([]srs.Transition, error) {
	ls := e.learner(learnerID)
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return e.scheduler.Decay(ctx, learnerID, e.now())
}

// signalsFor converts an outcome into struggle signals.
func (e *Engine) signalsFor(chunkID string, o srs.Outcome, now time.Time) []struggle.Signal {
	var signals []struggle.Signal
	if !o.Correct {
		signals = append(signals, struggle.Signal{Kind: struggle.SignalWrong, ChunkID: chunkID, At: now})
	}
	if o.UsedHelp {
		signals = append(signals, struggle.Signal{Kind: struggle.SignalHelp, ChunkID: chunkID, At: now})
	}
	if o.LatencyMs > e.opts.SlowLatencyMs {
		signals = append(signals, struggle.Signal{Kind: struggle.SignalSlow, ChunkID: chunkID, At: now})
	} else if o.Correct && o.LatencyMs > 0 && o.LatencyMs < e.opts.FastLatencyMs {
		signals = append(signals, struggle.Signal{Kind: struggle.SignalFast, ChunkID: chunkID, At: now})
	}
	return signals
}

// refreshCounts recomputes the profile's chunk counts from scheduler state.
func (e *Engine) refreshCounts(ctx context.Context, p *profile.Profile) error {
	counts := profile.ChunkCounts{}
	for _, pair := range []struct {
		status srs.Status
		dst    *int
	}{
		{srs.StatusAcquired, &counts.Acquired},
		{srs.StatusLearning, &counts.Learning},
		{srs.StatusFragile, &counts.Fragile},
	} {
		ids, err := e.scheduler.ChunkIDsByStatus(ctx, p.LearnerID, pair.status)
		if err != nil {
			return err
		}
		*pair.dst = len(ids)
	}
	counts.Total = counts.Acquired + counts.Learning + counts.Fragile
	p.ChunkCounts = counts
	return nil
}

// seenTexts returns the texts of every chunk the learner has state for,
// capped for the generator prompt.
func (e *Engine) seenTexts(ctx context.Context, learnerID string) ([]string, error) {
	known, err := e.scheduler.KnownChunkIDs(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > e.opts.MaxExcludeTexts {
		ids = ids[len(ids)-e.opts.MaxExcludeTexts:]
	}
	chunks, err := e.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return texts, nil
}

// bumpChunkInterests strengthens the profile's detected interests with the
// topics of a correctly answered chunk. Best effort; a lookup failure is
// only logged.
func (e *Engine) bumpChunkInterests(ctx context.Context, p *profile.Profile, chunkID string, now time.Time) {
	chunks, err := e.repo.GetByIDs(ctx, []string{chunkID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: interest lookup failed for chunk %s: %v\n", chunkID, err)
		return
	}
	for _, c := range chunks {
		for _, topic := range c.Topics {
			p.BumpInterest(topic, now)
		}
	}
}

func (e *Engine) logAnswer(ctx context.Context, ev AnswerEvent) {
	if err := e.sink.LogAnswer(ctx, ev); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log answer event: %v\n", err)
	}
}

func (e *Engine) logSession(ctx context.Context, ev SessionEvent) {
	if err := e.sink.LogSession(ctx, ev); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log session event: %v\n", err)
	}
}

// applyTransition adjusts the status tallies for one transition.
func applyTransition(c *profile.ChunkCounts, tr srs.Transition) {
	bump := func(s srs.Status, delta int) {
		switch s {
		case srs.StatusAcquired:
			c.Acquired += delta
		case srs.StatusLearning:
			c.Learning += delta
		case srs.StatusFragile:
			c.Fragile += delta
		case srs.StatusNew:
			return
		}
	}
	if tr.From == tr.To {
		return
	}
	bump(tr.From, -1)
	bump(tr.To, 1)
	c.Total = c.Acquired + c.Learning + c.Fragile
}

// windowStats summarizes up to the last ten outcomes for adaptation.
func windowStats(outcomes []srs.Outcome) calibrate.WindowStats {
	window := outcomes
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	if len(window) == 0 {
		return calibrate.WindowStats{}
	}
	correct, help := 0, 0
	for _, o := range window {
		if o.Correct {
			correct++
		}
		if o.UsedHelp {
			help++
		}
	}
	n := float64(len(window))
	return calibrate.WindowStats{
		Accuracy: float64(correct) / n,
		HelpRate: float64(help) / n,
	}
}

// topInterests returns the learner's strongest detected interests,
// strongest first, ties broken by name.
func topInterests(p *profile.Profile, n int) []string {
	type entry struct {
		topic    string
		strength float64
	}
	entries := make([]entry, 0, len(p.DetectedInterests))
	for topic, in := range p.DetectedInterests {
		entries = append(entries, entry{topic, in.Strength})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].strength != entries[j].strength {
			return entries[i].strength > entries[j].strength
		}
		return entries[i].topic < entries[j].topic
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries)+len(p.ExplicitInterests))
	out = append(out, p.ExplicitInterests...)
	for _, en := range entries {
		out = append(out, en.topic)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// recoverable reports whether the error is a persistence failure the
// session can ride through on in-memory state.
func recoverable(err error) bool {
	var srsErr *srs.ErrSaveFailed
	var profErr *profile.ErrSaveFailed
	var contentErr *content.ErrSaveFailed
	return errors.As(err, &srsErr) || errors.As(err, &profErr) || errors.As(err, &contentErr)
}
