package wordpairs

import (
	"fmt"
	"strings"
)

const systemPrompt = `You create word pairs for a paired-associates memory exercise.

Rules:
- Every cue and every target is a single common English word in lowercase, 3 to 10 letters.
- The target must not be a synonym, antonym or obvious associate of its cue.
- Concrete, easy-to-picture nouns work best.
- No cue may appear twice, and no word may be both a cue and a target.
- Do not use any word from the "recently used" list.`

// buildUserMessage asks for n pairs, avoiding the most recent cues.
func buildUserMessage(n int, theme string, recent []string, maxAvoid int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pairs needed: %d\n", n)
	if theme != "" {
		fmt.Fprintf(&b, "Theme: %s\n", theme)
	}
	b.WriteString("\nRecently used:\n")
	b.WriteString(buildAvoid(recent, maxAvoid))
	return b.String()
}

// buildAvoid formats the most recent words, or "None".
func buildAvoid(words []string, max int) string {
	if max > 0 && len(words) > max {
		words = words[len(words)-max:]
	}
	if len(words) == 0 {
		return "None"
	}
	return strings.Join(words, ", ")
}
