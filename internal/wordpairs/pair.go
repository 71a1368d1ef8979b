// Package wordpairs supplies the cue/target word pairs studied and recalled
// in the word-pairs exercise.
package wordpairs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotEnoughPairs is returned when a source cannot supply the number of
// distinct pairs requested.
var ErrNotEnoughPairs = errors.New("not enough word pairs")

// Pair is one cue word and the target word the player must recall for it.
type Pair struct {
	Cue    string `json:"cue"`
	Target string `json:"target"`
}

func (p Pair) String() string {
	return p.Cue + " - " + p.Target
}

// Source supplies word pairs for one trial.
type Source interface {
	// Pairs returns n pairs with distinct cues.
	Pairs(ctx context.Context, n int) ([]Pair, error)
}

// Match reports whether answer recalls target. Case and surrounding
// whitespace are ignored.
func Match(answer, target string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(answer, strings.TrimSpace(target))
}

// ValidationError describes why a generated pair list was rejected.
type ValidationError struct {
	Index   int // offending pair, or -1 for the whole list
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "invalid word pairs: " + e.Message
	}
	return fmt.Sprintf("invalid word pair %d: %s", e.Index, e.Message)
}

// Validate checks that pairs holds at least n usable pairs: single words,
// cue differs from target, and no cue repeats.
func Validate(pairs []Pair, n int) error {
	if len(pairs) < n {
		return &ValidationError{Index: -1, Message: fmt.Sprintf("got %d pairs, want %d", len(pairs), n)}
	}
	seen := make(map[string]bool, len(pairs))
	for i, p := range pairs {
		cue := strings.ToLower(strings.TrimSpace(p.Cue))
		target := strings.ToLower(strings.TrimSpace(p.Target))
		switch {
		case cue == "" || target == "":
			return &ValidationError{Index: i, Message: "empty word"}
		case strings.ContainsAny(cue, " \t") || strings.ContainsAny(target, " \t"):
			return &ValidationError{Index: i, Message: fmt.Sprintf("%q has more than one word", p.String())}
		case cue == target:
			return &ValidationError{Index: i, Message: fmt.Sprintf("cue and target are both %q", cue)}
		case seen[cue]:
			return &ValidationError{Index: i, Message: fmt.Sprintf("cue %q repeats", cue)}
		}
		seen[cue] = true
	}
	return nil
}
