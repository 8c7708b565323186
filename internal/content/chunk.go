package content

import (
	"fmt"
	"time"
)

// Kind classifies a content chunk by how it is taught.
type Kind string

const (
	// KindFixedPhrase is a formulaic expression taught as a whole
	// ("il y a", "once upon a time").
	KindFixedPhrase Kind = "fixed_phrase"

	// KindWordPairing is a conventional word combination ("heavy rain",
	// "make a mistake").
	KindWordPairing Kind = "word_pairing"

	// KindUtterance is a situational sentence used as-is ("Can I have
	// some water, please?").
	KindUtterance Kind = "utterance"

	// KindPattern is a fill-in-the-blank frame with one or more slots
	// ("I would like ___, please"). Only this kind carries slot data.
	KindPattern Kind = "pattern"
)

// Slot describes one blank in a pattern chunk.
type Slot struct {
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options,omitempty"`
}

// MinDifficulty and MaxDifficulty bound the ordinal difficulty scale.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Chunk is an atomic content unit. Immutable after creation; a repeated
// generation of the same text resolves to the existing record.
type Chunk struct {
	ID          string `db:"id"`
	Text        string `db:"text"`
	Translation string `db:"translation"`
	Language    string `db:"language"`
	Kind        Kind   `db:"kind"`

	// Slots is populated only when Kind is KindPattern.
	Slots []Slot `db:"-"`

	Difficulty    int      `db:"difficulty"`
	Topics        []string `db:"-"`
	AgeBands      []string `db:"-"`
	FrequencyRank int      `db:"frequency_rank"`

	CreatedAt time.Time `db:"created_at"`
}

// Validate checks structural invariants on a chunk candidate.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return fmt.Errorf("chunk text is empty")
	}
	if c.Language == "" {
		return fmt.Errorf("chunk language is empty")
	}
	switch c.Kind {
	case KindFixedPhrase, KindWordPairing, KindUtterance:
		if len(c.Slots) > 0 {
			return fmt.Errorf("kind %q must not carry slot data", c.Kind)
		}
	case KindPattern:
		if len(c.Slots) == 0 {
			return fmt.Errorf("pattern chunk needs at least one slot")
		}
	default:
		return fmt.Errorf("unknown chunk kind %q", c.Kind)
	}
	return nil
}

// ClampDifficulty forces the difficulty into [MinDifficulty, MaxDifficulty].
// Out-of-range values from generated content are clamped, never rejected.
func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// HasTopic reports whether the chunk is tagged with the given topic.
func (c *Chunk) HasTopic(topic string) bool {
	for _, t := range c.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
