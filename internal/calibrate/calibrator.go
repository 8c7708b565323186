package calibrate

import (
	"context"
	"fmt"

	"github.com/chatterling/engine/internal/content"
	"github.com/chatterling/engine/internal/profile"
	"github.com/chatterling/engine/internal/srs"
)

// BandRadius is the half-width of the target difficulty window for new
// content: chunks within targetLevel ± BandRadius qualify.
const BandRadius = 0.5

// Calibrator selects content in the learner's target band.
type Calibrator struct {
	repo      *content.Repository
	scheduler *srs.Scheduler
	bands     BandTable
}

// New creates a calibrator. A nil bands table falls back to the default.
func New(repo *content.Repository, scheduler *srs.Scheduler, bands BandTable) *Calibrator {
	if bands == nil {
		bands = DefaultBandTable
	}
	return &Calibrator{repo: repo, scheduler: scheduler, bands: bands}
}

// Bands exposes the lookup table in use.
func (c *Calibrator) Bands() BandTable { return c.bands }

// CurrentLevel derives the learner's competence band from the profile.
func (c *Calibrator) CurrentLevel(p *profile.Profile) float64 {
	return c.bands.CurrentLevel(p)
}

// TargetLevel is the "i+1" band for new content.
func (c *Calibrator) TargetLevel(p *profile.Profile) float64 {
	return c.bands.TargetLevel(p)
}

// SelectNewChunks returns up to count unseen chunks in the target band
// for the topic, common chunks first (ascending frequency rank, then
// chunk ID, so identical inputs select identically).
func (c *Calibrator) SelectNewChunks(ctx context.Context, p *profile.Profile, topic string, count int) ([]content.Chunk, error) {
	if count <= 0 {
		return nil, nil
	}

	known, err := c.scheduler.KnownChunkIDs(ctx, p.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("known chunks: %w", err)
	}
	exclude := make([]string, 0, len(known))
	for id := range known {
		exclude = append(exclude, id)
	}

	target := c.TargetLevel(p)
	criteria := content.Criteria{
		Language:      p.Language,
		MinDifficulty: target - BandRadius,
		MaxDifficulty: target + BandRadius,
		ExcludeIDs:    exclude,
		Limit:         count,
	}
	if topic != "" {
		criteria.Topics = []string{topic}
	}

	return c.repo.Find(ctx, criteria)
}

// SelectContextChunks returns up to count chunks at or below the current
// level that the learner has already acquired or is learning. These
// scaffold new content with familiar material.
func (c *Calibrator) SelectContextChunks(ctx context.Context, p *profile.Profile, topic string, count int) ([]content.Chunk, error) {
	if count <= 0 {
		return nil, nil
	}

	ids, err := c.scheduler.ChunkIDsByStatus(ctx, p.LearnerID, srs.StatusAcquired, srs.StatusLearning)
	if err != nil {
		return nil, fmt.Errorf("learner chunk set: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	chunks, err := c.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	level := c.CurrentLevel(p)
	var picked []content.Chunk
	for _, ch := range chunks {
		if float64(ch.Difficulty) > level {
			continue
		}
		if topic != "" && !ch.HasTopic(topic) {
			continue
		}
		picked = append(picked, ch)
		if len(picked) == count {
			break
		}
	}
	return picked, nil
}
