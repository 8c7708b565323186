package chunkgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a language teacher creating bite-sized content for children learning a new language through chat.

Rules:
- Generate short, natural chunks of the target language: fixed phrases, word pairings, full utterances, or fill-in-the-blank patterns.
- Every chunk must be something a native-speaking child would actually say. No textbook-stilted phrasing.
- Keep chunks short: a phrase or a single sentence, never a paragraph.
- Provide an English translation for every chunk.
- For "pattern" chunks, mark each blank with ___ in the text and list the slot options separately. Other kinds must have no blanks.
- Match the requested difficulty: 1 means single common words and greetings, 5 means multi-clause sentences with less frequent vocabulary.
- When a topic or interests are given, set the chunks in that world (examples, nouns, situations) without forcing it.
- Tag each chunk with one or two topics from everyday child life (animals, food, school, family, play, weather, feelings).
- Do not repeat any chunk from the "already seen" list, including trivial rewordings.`

// buildUserMessage constructs the user message from a Spec and Config limits.
func buildUserMessage(spec Spec, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Target language: %s\n", spec.Language)
	fmt.Fprintf(&b, "Difficulty: %d\n", spec.Difficulty)
	fmt.Fprintf(&b, "Age band: %s\n", spec.AgeBand)
	fmt.Fprintf(&b, "Chunks to generate: %d\n", spec.Count)

	if spec.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", spec.Topic)
	}

	interests := spec.Interests
	if cfg.MaxInterests > 0 && len(interests) > cfg.MaxInterests {
		interests = interests[:cfg.MaxInterests]
	}
	if len(interests) > 0 {
		fmt.Fprintf(&b, "Learner interests: %s\n", strings.Join(interests, ", "))
	}

	b.WriteString("\nAlready seen by this learner:\n")
	b.WriteString(buildExclude(spec.Exclude, cfg.MaxExclude))

	return b.String()
}

// buildExclude formats already-seen texts for the prompt, respecting the
// max limit. Returns "None" if there is nothing to exclude.
func buildExclude(seen []string, max int) string {
	if len(seen) == 0 {
		return "None"
	}

	// Keep only the most recent N texts.
	if max > 0 && len(seen) > max {
		seen = seen[len(seen)-max:]
	}

	var b strings.Builder
	for i, s := range seen {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}
