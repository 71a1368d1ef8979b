// Package export writes stored training history to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/neurogym/internal/store"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetSessions = "Sessions"
	SheetTrials   = "Trials"
)

// Options selects the sessions to export.
type Options struct {
	Exercise string    // "" = all exercises
	From     time.Time // zero = no lower bound
	To       time.Time // zero = no upper bound
}

// Result counts the rows written.
type Result struct {
	Sessions int
	Trials   int
}

var (
	summaryHeader = []any{"Exercise", "Sessions", "Trials", "Correct", "Accuracy", "Best Score", "Hardest Reached", "Easiest Hardest"}
	sessionHeader = []any{"Finished", "Session", "Exercise", "Trials", "Correct", "Timed Out", "Accuracy",
		"Avg Response (ms)", "Initial", "Final", "Max", "Min", "Hardest", "Threshold", "Score", "Completed", "Duration (s)"}
	trialHeader = []any{"Session", "Exercise", "Trial", "Difficulty", "Level", "Correct", "Credit",
		"Response (ms)", "Timed Out", "Difficulty After", "Adjusted", "Dimensions"}
)

// Workbook builds the export workbook. The caller must Close it.
func Workbook(ctx context.Context, events store.EventRepo, opts Options) (*excelize.File, Result, error) {
	var res Result
	sessions, err := events.QuerySessions(ctx, store.QueryOpts{Exercise: opts.Exercise, From: opts.From, To: opts.To})
	if err != nil {
		return nil, res, fmt.Errorf("query sessions: %w", err)
	}
	// Oldest first reads naturally in a spreadsheet.
	slices.Reverse(sessions)

	stats, err := events.ExerciseStats(ctx)
	if err != nil {
		return nil, res, fmt.Errorf("query exercise stats: %w", err)
	}

	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			f.Close()
		}
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, res, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, res, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSessions, SheetTrials} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, res, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summary, err := newSheet(f, SheetSummary, header, summaryHeader)
	if err != nil {
		return nil, res, err
	}
	for _, s := range stats {
		if opts.Exercise != "" && s.Exercise != opts.Exercise {
			continue
		}
		if err := summary.add(s.Exercise, s.Sessions, s.Trials, s.Correct, percent(s.Accuracy()),
			s.BestScore, s.MaxHardest, s.MinHardest); err != nil {
			return nil, res, err
		}
	}
	if err := summary.flush(); err != nil {
		return nil, res, err
	}

	sessionSheet, err := newSheet(f, SheetSessions, header, sessionHeader)
	if err != nil {
		return nil, res, err
	}
	trialSheet, err := newSheet(f, SheetTrials, header, trialHeader)
	if err != nil {
		return nil, res, err
	}
	for _, s := range sessions {
		if err := sessionSheet.add(s.Timestamp.Local().Format(time.DateTime), s.SessionID, s.Exercise,
			s.TotalTrials, s.CorrectTrials, s.TimedOutTrials, percent(s.Accuracy), round(s.AvgResponseMs),
			s.InitialDifficulty, s.FinalDifficulty, s.MaxDifficulty, s.MinDifficulty, s.HardestDifficulty,
			s.ThresholdDifficulty, s.Score, yesNo(s.Completed), round(float64(s.DurationMs)/1000)); err != nil {
			return nil, res, err
		}
		res.Sessions++

		trials, err := events.SessionTrials(ctx, s.SessionID)
		if err != nil {
			return nil, res, fmt.Errorf("query trials of %s: %w", s.SessionID, err)
		}
		for _, t := range trials {
			if err := trialSheet.add(t.SessionID, t.Exercise, t.TrialIndex+1, t.Difficulty, t.Level,
				yesNo(t.Correct), round(t.Credit), t.ResponseTimeMs, yesNo(t.TimedOut), t.DifficultyAfter,
				yesNo(t.Adjusted), dimensions(t.Dimensions)); err != nil {
				return nil, res, err
			}
			res.Trials++
		}
	}
	if err := sessionSheet.flush(); err != nil {
		return nil, res, err
	}
	if err := trialSheet.flush(); err != nil {
		return nil, res, err
	}

	ok = true
	return f, res, nil
}

// Write builds the workbook and writes it to w.
func Write(ctx context.Context, events store.EventRepo, w io.Writer, opts Options) (Result, error) {
	f, res, err := Workbook(ctx, events, opts)
	if err != nil {
		return res, err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return res, fmt.Errorf("write workbook: %w", err)
	}
	return res, nil
}

// WriteFile builds the workbook and saves it at path.
func WriteFile(ctx context.Context, events store.EventRepo, path string, opts Options) (Result, error) {
	f, res, err := Workbook(ctx, events, opts)
	if err != nil {
		return res, err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return res, fmt.Errorf("save workbook: %w", err)
	}
	return res, nil
}

// sheet appends rows to one worksheet through a StreamWriter.
type sheet struct {
	name string
	sw   *excelize.StreamWriter
	row  int
}

func newSheet(f *excelize.File, name string, style int, header []any) (*sheet, error) {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return nil, fmt.Errorf("stream sheet %s: %w", name, err)
	}
	if err := sw.SetColWidth(1, len(header), 14); err != nil {
		return nil, fmt.Errorf("set widths on %s: %w", name, err)
	}
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = excelize.Cell{StyleID: style, Value: h}
	}
	s := &sheet{name: name, sw: sw}
	if err := s.add(cells...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sheet) add(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	for i, v := range values {
		if str, ok := v.(string); ok {
			values[i] = sanitize(str)
		}
	}
	if err := s.sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write %s row %d: %w", s.name, s.row, err)
	}
	return nil
}

func (s *sheet) flush() error {
	if err := s.sw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", s.name, err)
	}
	return nil
}

// sanitize stops spreadsheet apps from evaluating text as a formula.
func sanitize(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func percent(f float64) float64 {
	return round(f * 100)
}

func round(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// dimensions renders per-dimension results sorted by name: "central=yes peripheral=no".
func dimensions(dims map[string]bool) string {
	if len(dims) == 0 {
		return ""
	}
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + yesNo(dims[name])
	}
	return strings.Join(parts, " ")
}
