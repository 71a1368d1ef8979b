package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var trialColumns = []string{
	"session_id", "exercise", "trial_index", "difficulty", "level",
	"correct", "credit", "response_time_ms", "timed_out",
	"difficulty_after", "adjusted", "dimensions",
}

func (r *eventRepo) AppendTrialEvent(ctx context.Context, data TrialEventData) error {
	var dims string
	if len(data.Dimensions) > 0 {
		b, err := json.Marshal(data.Dimensions)
		if err != nil {
			return fmt.Errorf("marshal trial dimensions: %w", err)
		}
		dims = string(b)
	}

	err := r.insert(ctx, trialEventsTable, trialColumns, []any{
		data.SessionID, data.Exercise, data.TrialIndex, data.Difficulty, data.Level,
		data.Correct, data.Credit, data.ResponseTimeMs, data.TimedOut,
		data.DifficultyAfter, data.Adjusted, dims,
	})
	if err != nil {
		return fmt.Errorf("save trial event: %w", err)
	}
	return nil
}

func (r *eventRepo) SessionTrials(ctx context.Context, sessionID string) ([]TrialRecord, error) {
	sel, t := selectEvents(trialEventsTable, trialColumns...)
	sel = sel.Where(entsql.EQ(t.C("session_id"), sessionID)).
		OrderBy(t.C("sequence"))

	var out []TrialRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var tr TrialRecord
		var dims string
		if err := rows.Scan(
			&tr.ID, &tr.Sequence, &tr.Timestamp,
			&tr.SessionID, &tr.Exercise, &tr.TrialIndex, &tr.Difficulty, &tr.Level,
			&tr.Correct, &tr.Credit, &tr.ResponseTimeMs, &tr.TimedOut,
			&tr.DifficultyAfter, &tr.Adjusted, &dims,
		); err != nil {
			return err
		}
		if dims != "" {
			if err := json.Unmarshal([]byte(dims), &tr.Dimensions); err != nil {
				return fmt.Errorf("unmarshal dimensions of trial %d: %w", tr.ID, err)
			}
		}
		out = append(out, tr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session trials: %w", err)
	}
	return out, nil
}
