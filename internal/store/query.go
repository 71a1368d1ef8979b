package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent SQL builders and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// insert appends one event row, assigning sequence and timestamp.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	return insertRow(ctx, r.db, table, seqNum, time.Now().UTC(), columns, values)
}

func insertRow(ctx context.Context, db *sql.DB, table string, seq int64, ts time.Time, columns []string, values []any) error {
	query, args := builder().
		Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seq, ts}, values...)...).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// selectEvents starts a SELECT over table with the event header columns
// (id, sequence, timestamp) followed by columns.
func selectEvents(table string, columns ...string) (*entsql.Selector, *entsql.SelectTable) {
	b := builder()
	t := b.Table(table)
	cols := []string{t.C("id"), t.C("sequence"), t.C("timestamp")}
	for _, c := range columns {
		cols = append(cols, t.C(c))
	}
	return b.Select(cols...).From(t), t
}

// filter applies opts and extra predicates to sel.
func filter(sel *entsql.Selector, t *entsql.SelectTable, opts QueryOpts, preds ...*entsql.Predicate) *entsql.Selector {
	if opts.After > 0 {
		preds = append(preds, entsql.GT(t.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT(t.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(t.C("timestamp"), opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(t.C("timestamp"), opts.To.UTC()))
	}
	switch len(preds) {
	case 0:
	case 1:
		sel.Where(preds[0])
	default:
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

// queryRows runs sel and calls scan for each row.
func queryRows(ctx context.Context, db *sql.DB, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	query, args := sel.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
