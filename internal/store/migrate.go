package store

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	sessionEventsTable = "session_events"
	trialEventsTable   = "trial_events"
	llmEventsTable     = "llm_request_events"
	snapshotsTable     = "snapshots"
)

// eventTable builds an event table: id, the global sequence, a UTC
// timestamp, then cols. indexed names extra columns to index.
func eventTable(name string, indexed []string, cols ...*schema.Column) *schema.Table {
	all := append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, cols...)

	t := &schema.Table{
		Name:       name,
		Columns:    all,
		PrimaryKey: []*schema.Column{all[0]},
	}
	prefix := strings.ReplaceAll(strings.TrimSuffix(name, "s"), "_", "")
	for _, c := range append([]string{"timestamp"}, indexed...) {
		for _, col := range all {
			if col.Name == c {
				t.Indexes = append(t.Indexes, &schema.Index{
					Name:    prefix + "_" + c,
					Columns: []*schema.Column{col},
				})
			}
		}
	}
	return t
}

// Tables holds the schema of every ent-managed table.
var Tables = []*schema.Table{
	eventTable(sessionEventsTable, []string{"session_id", "exercise", "action"},
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "exercise", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "planned_trials", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "total_trials", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "correct_trials", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "timed_out_trials", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "accuracy", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "avg_response_ms", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "initial_difficulty", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "final_difficulty", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "max_difficulty", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "min_difficulty", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "hardest_difficulty", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "threshold_difficulty", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "score", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "completed", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
	),
	eventTable(trialEventsTable, []string{"session_id", "exercise"},
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "exercise", Type: field.TypeString},
		&schema.Column{Name: "trial_index", Type: field.TypeInt},
		&schema.Column{Name: "difficulty", Type: field.TypeInt},
		&schema.Column{Name: "level", Type: field.TypeInt, Default: 1},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "credit", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "response_time_ms", Type: field.TypeInt, Default: -1},
		&schema.Column{Name: "timed_out", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "difficulty_after", Type: field.TypeInt},
		&schema.Column{Name: "adjusted", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "dimensions", Type: field.TypeString, Default: ""},
	),
	eventTable(llmEventsTable, []string{"provider", "purpose", "success"},
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Default: ""},
	),
	eventTable(snapshotsTable, nil,
		&schema.Column{Name: "data", Type: field.TypeString},
	),
}

// migrate creates or updates every table in Tables.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
