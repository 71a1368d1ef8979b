package stimulus

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/wordpairs"
)

const (
	maskDuration = 400 * time.Millisecond
	nbackLetters = "CHKLQRST"
	searchTarget = "Q"
	searchOther  = "O"
)

var inks = []string{Red, Green, Blue, Yellow}

// Builder makes the stimulus for each trial of one session. It remembers
// what earlier trials showed so that n-back matches and task switches refer
// to real previous content. A Builder is not safe for concurrent use.
type Builder struct {
	rng   *rand.Rand
	words wordpairs.Source

	positions []int
	letters   []byte
	task      string
}

// NewBuilder creates a Builder. words supplies word-pair content; it may be
// nil when the word-pairs exercise is not played.
func NewBuilder(rng *rand.Rand, words wordpairs.Source) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{rng: rng, words: words}
}

// Build returns the stimulus for spec. Only word pairs can fail, when the
// word source fails.
func (b *Builder) Build(ctx context.Context, d exercise.Descriptor, spec exercise.TrialSpec) (Stimulus, error) {
	if spec.Index == 0 {
		b.reset()
	}
	s := Stimulus{ResponseWindow: ms(spec.ResponseWindowMs)}

	switch d.Kind {
	case exercise.KindSpan:
		b.span(&s, spec)
	case exercise.KindNBack:
		b.nback(&s, spec)
	case exercise.KindSearch:
		b.search(&s, spec)
	case exercise.KindStroop:
		b.stroop(&s, spec)
	case exercise.KindSwitching:
		b.switching(&s, spec)
	case exercise.KindUFOV:
		b.ufov(&s, spec, d.HasDimension(exercise.DimPeripheral))
	case exercise.KindDualTask:
		b.dual(&s, spec)
	case exercise.KindRecall:
		if err := b.recall(ctx, &s, spec); err != nil {
			return Stimulus{}, err
		}
	default:
		return Stimulus{}, fmt.Errorf("build stimulus for %s: %w", d.ID, exercise.ErrUnknownExercise)
	}
	return s, nil
}

func (b *Builder) reset() {
	b.positions = b.positions[:0]
	b.letters = b.letters[:0]
	b.task = ""
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func (b *Builder) span(s *Stimulus, spec exercise.TrialSpec) {
	digits := make([]byte, spec.SequenceLength)
	per := ms(spec.StimulusDurationMs / max(spec.SequenceLength, 1))
	for i := range digits {
		digits[i] = byte('0' + b.rng.IntN(10))
		s.Frames = append(s.Frames, Frame{Lines: []string{string(digits[i])}, Duration: per})
	}
	want := string(digits)

	s.Prompt = "Type the digits in order"
	s.Expected = want
	s.score = func(answer string) map[string]bool {
		return map[string]bool{exercise.DimResponse: strings.Join(fields(answer), "") == want}
	}
}

// nback picks a position and a letter for this trial. A match repeats the
// value from N trials back; a non-match is guaranteed to differ from it.
func (b *Builder) nback(s *Stimulus, spec exercise.TrialSpec) {
	cells := exercise.NBackGrid * exercise.NBackGrid
	back := len(b.positions) - spec.NBack
	hasBack := spec.NBack > 0 && back >= 0

	pos := b.rng.IntN(cells)
	letter := nbackLetters[b.rng.IntN(len(nbackLetters))]
	var posMatch, letterMatch bool
	if hasBack {
		if spec.PositionMatch {
			pos = b.positions[back]
		} else {
			for pos == b.positions[back] {
				pos = b.rng.IntN(cells)
			}
		}
		if spec.LetterMatch {
			letter = b.letters[back]
		} else {
			for letter == b.letters[back] {
				letter = nbackLetters[b.rng.IntN(len(nbackLetters))]
			}
		}
		posMatch, letterMatch = spec.PositionMatch, spec.LetterMatch
	}
	b.positions = append(b.positions, pos)
	b.letters = append(b.letters, letter)

	marks := map[int]string{pos: string(letter)}
	s.Frames = []Frame{{Lines: grid(exercise.NBackGrid, marks, "."), Duration: ms(spec.StimulusDurationMs)}}
	s.Probe = Frame{Lines: grid(exercise.NBackGrid, nil, ".")}
	s.Prompt = fmt.Sprintf("%d-back: p = position match, l = letter match, Enter = neither", spec.NBack)
	s.SilenceIsAnswer = true

	var want []string
	if posMatch {
		want = append(want, "p")
	}
	if letterMatch {
		want = append(want, "l")
	}
	s.Expected = strings.Join(want, "")
	if s.Expected == "" {
		s.Expected = "no match"
	}
	s.score = func(answer string) map[string]bool {
		a := strings.ToLower(answer)
		return map[string]bool{
			exercise.DimPosition: strings.Contains(a, "p") == posMatch,
			exercise.DimLetter:   strings.Contains(a, "l") == letterMatch,
		}
	}
}

func (b *Builder) search(s *Stimulus, spec exercise.TrialSpec) {
	s.Probe = Frame{Lines: grid(spec.GridSize, map[int]string{spec.TargetPosition: searchTarget}, searchOther)}
	s.Prompt = fmt.Sprintf("Find the %s: type its cell, e.g. b3", searchTarget)
	s.Expected = cellName(spec.TargetPosition, spec.GridSize)
	s.score = func(answer string) map[string]bool {
		return map[string]bool{
			exercise.DimTarget: parseCell(token(fields(answer), 0), spec.GridSize) == spec.TargetPosition,
		}
	}
}

func (b *Builder) stroop(s *Stimulus, spec exercise.TrialSpec) {
	word := inks[b.rng.IntN(len(inks))]
	ink := word
	if !spec.Congruent {
		for ink == word {
			ink = inks[b.rng.IntN(len(inks))]
		}
	}
	s.Probe = Frame{Lines: []string{strings.ToUpper(word)}, Color: ink}
	s.Prompt = "Name the ink colour: r, g, b or y"
	s.Expected = ink
	s.score = func(answer string) map[string]bool {
		a := token(fields(answer), 0)
		return map[string]bool{exercise.DimResponse: a != "" && (a == ink || a == ink[:1])}
	}
}

// Task-switching tasks: judge the digit's parity or the letter's class.
const (
	taskNumber = "NUMBER"
	taskLetter = "LETTER"
)

func (b *Builder) switching(s *Stimulus, spec exercise.TrialSpec) {
	switch {
	case b.task == "":
		b.task = []string{taskNumber, taskLetter}[b.rng.IntN(2)]
	case spec.SwitchTask && b.task == taskNumber:
		b.task = taskLetter
	case spec.SwitchTask:
		b.task = taskNumber
	}

	digit := 1 + b.rng.IntN(9)
	letter := "AEIUGKMR"[b.rng.IntN(8)]
	cue := b.task + ": odd (o) or even (e)?"
	want := "e"
	if digit%2 == 1 {
		want = "o"
	}
	if b.task == taskLetter {
		cue = b.task + ": vowel (v) or consonant (c)?"
		want = "c"
		if strings.ContainsRune("AEIU", rune(letter)) {
			want = "v"
		}
	}

	s.Frames = []Frame{{Lines: []string{cue}, Duration: ms(spec.CueIntervalMs)}}
	s.Probe = Frame{Lines: []string{cue, "", fmt.Sprintf("%d%c", digit, letter)}}
	s.Prompt = "Answer for the cued task"
	s.Expected = want
	s.score = func(answer string) map[string]bool {
		return map[string]bool{exercise.DimResponse: token(fields(answer), 0) == want}
	}
}

// UFOV central objects and their answer keys.
var centralObjects = []struct{ glyph, key string }{
	{"[CAR]", "c"},
	{"[TRUCK]", "t"},
}

func (b *Builder) ufov(s *Stimulus, spec exercise.TrialSpec, peripheral bool) {
	obj := centralObjects[b.rng.IntN(len(centralObjects))]
	s.Frames = []Frame{
		{Lines: compass(obj.glyph, spec.PeripheralPosition), Duration: ms(spec.StimulusDurationMs)},
		{Lines: mask(), Duration: maskDuration},
	}
	s.Expected = obj.key
	if peripheral {
		s.Prompt = "Central object (c/t) and star direction (n, ne, e ... or 1-8)"
		s.Expected += " " + directions[spec.PeripheralPosition]
	} else {
		s.Prompt = "Central object: c = car, t = truck"
	}
	s.score = func(answer string) map[string]bool {
		toks := fields(answer)
		dims := map[string]bool{exercise.DimCentral: token(toks, 0) == obj.key}
		if peripheral {
			dims[exercise.DimPeripheral] = parseDirection(token(toks, 1)) == spec.PeripheralPosition
		}
		return dims
	}
}

func (b *Builder) dual(s *Stimulus, spec exercise.TrialSpec) {
	lines := grid(spec.GridSize, map[int]string{spec.TargetPosition: searchTarget}, searchOther)
	lines = append(lines, "", "star: "+compassArrow(spec.PeripheralPosition))
	s.Frames = []Frame{
		{Lines: lines, Duration: ms(spec.StimulusDurationMs)},
		{Lines: mask(), Duration: maskDuration},
	}
	s.Prompt = fmt.Sprintf("Cell of the %s and star direction, e.g. b3 ne", searchTarget)
	s.Expected = cellName(spec.TargetPosition, spec.GridSize) + " " + directions[spec.PeripheralPosition]
	s.score = func(answer string) map[string]bool {
		toks := fields(answer)
		return map[string]bool{
			exercise.DimTarget:     parseCell(token(toks, 0), spec.GridSize) == spec.TargetPosition,
			exercise.DimPeripheral: parseDirection(token(toks, 1)) == spec.PeripheralPosition,
		}
	}
}

func (b *Builder) recall(ctx context.Context, s *Stimulus, spec exercise.TrialSpec) error {
	if b.words == nil {
		b.words = wordpairs.NewStaticSource(b.rng)
	}
	pairs, err := b.words.Pairs(ctx, spec.PairCount)
	if err != nil {
		return fmt.Errorf("build word pairs: %w", err)
	}

	per := ms(spec.StimulusDurationMs / max(len(pairs), 1))
	cues := make([]string, len(pairs))
	targets := make([]string, len(pairs))
	for i, p := range pairs {
		s.Frames = append(s.Frames, Frame{Lines: []string{p.String()}, Duration: per})
		cues[i] = p.Cue
		targets[i] = p.Target
	}
	// Recall in a different order from study.
	order := b.rng.Perm(len(pairs))
	probe := make([]string, len(order))
	want := make([]string, len(order))
	for i, j := range order {
		probe[i] = fmt.Sprintf("%d. %s - ?", i+1, cues[j])
		want[i] = targets[j]
	}

	s.Probe = Frame{Lines: probe}
	s.Prompt = "Type each partner in the order listed, separated by spaces"
	s.Expected = strings.Join(want, " ")
	s.score = func(answer string) map[string]bool {
		toks := fields(answer)
		dims := make(map[string]bool, len(want))
		for i, w := range want {
			dims[fmt.Sprintf("pair-%d", i+1)] = wordpairs.Match(token(toks, i), w)
		}
		return dims
	}
	return nil
}
