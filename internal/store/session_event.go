package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var sessionColumns = []string{
	"session_id", "exercise", "action",
	"planned_trials", "total_trials", "correct_trials", "timed_out_trials",
	"accuracy", "avg_response_ms",
	"initial_difficulty", "final_difficulty", "max_difficulty", "min_difficulty",
	"hardest_difficulty", "threshold_difficulty",
	"score", "completed", "duration_ms",
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, sessionEventsTable, sessionColumns, []any{
		data.SessionID, data.Exercise, data.Action,
		data.PlannedTrials, data.TotalTrials, data.CorrectTrials, data.TimedOutTrials,
		data.Accuracy, data.AvgResponseMs,
		data.InitialDifficulty, data.FinalDifficulty, data.MaxDifficulty, data.MinDifficulty,
		data.HardestDifficulty, data.ThresholdDifficulty,
		data.Score, data.Completed, data.DurationMs,
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func scanSession(rows *sql.Rows) (SessionRecord, error) {
	var s SessionRecord
	err := rows.Scan(
		&s.ID, &s.Sequence, &s.Timestamp,
		&s.SessionID, &s.Exercise, &s.Action,
		&s.PlannedTrials, &s.TotalTrials, &s.CorrectTrials, &s.TimedOutTrials,
		&s.Accuracy, &s.AvgResponseMs,
		&s.InitialDifficulty, &s.FinalDifficulty, &s.MaxDifficulty, &s.MinDifficulty,
		&s.HardestDifficulty, &s.ThresholdDifficulty,
		&s.Score, &s.Completed, &s.DurationMs,
	)
	return s, err
}

func (r *eventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	sel, t := selectEvents(sessionEventsTable, sessionColumns...)
	preds := []*entsql.Predicate{entsql.EQ(t.C("action"), ActionEnd)}
	if opts.Exercise != "" {
		preds = append(preds, entsql.EQ(t.C("exercise"), opts.Exercise))
	}
	sel = filter(sel, t, opts, preds...).OrderBy(entsql.Desc(t.C("sequence")))

	var out []SessionRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		s, err := scanSession(rows)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LastFinalDifficulty(ctx context.Context, exercise string) (int, bool, error) {
	b := builder()
	t := b.Table(sessionEventsTable)
	query, args := b.Select(t.C("final_difficulty")).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("exercise"), exercise),
			entsql.EQ(t.C("action"), ActionEnd),
			entsql.GT(t.C("total_trials"), 0),
		)).
		OrderBy(entsql.Desc(t.C("sequence"))).
		Limit(1).
		Query()

	var d int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query last difficulty: %w", err)
	}
	return d, true, nil
}

func (r *eventRepo) ExerciseStats(ctx context.Context) ([]ExerciseStat, error) {
	b := builder()
	t := b.Table(sessionEventsTable)
	sel := b.Select(
		t.C("exercise"),
		entsql.As(entsql.Count("*"), "sessions"),
		entsql.As(entsql.Sum(t.C("total_trials")), "trials"),
		entsql.As(entsql.Sum(t.C("correct_trials")), "correct"),
		entsql.As(entsql.Max(t.C("score")), "best_score"),
		entsql.As(entsql.Max(t.C("hardest_difficulty")), "max_hardest"),
		entsql.As(entsql.Min(t.C("hardest_difficulty")), "min_hardest"),
		entsql.As(entsql.Max(t.C("sequence")), "last_sequence"),
	).
		From(t).
		Where(entsql.EQ(t.C("action"), ActionEnd)).
		GroupBy(t.C("exercise")).
		OrderBy(t.C("exercise"))

	var out []ExerciseStat
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var s ExerciseStat
		var trials, correct sql.NullInt64
		if err := rows.Scan(&s.Exercise, &s.Sessions, &trials, &correct,
			&s.BestScore, &s.MaxHardest, &s.MinHardest, &s.LastSequence); err != nil {
			return err
		}
		s.Trials = int(trials.Int64)
		s.Correct = int(correct.Int64)
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query exercise stats: %w", err)
	}
	return out, nil
}
