// Package store implements the generic record accessor: list, get,
// create, update and delete over any entity kind declared in the model
// catalog. Records travel as field maps keyed by column name so that
// "field omitted" and "field set to null" stay distinguishable all the
// way down to the SQL layer.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/projektcopilot/backend/internal/model"
	"github.com/projektcopilot/backend/pkg/database"
	"github.com/projektcopilot/backend/pkg/logger"
)

// Record is one persisted entity as a column-name keyed field map.
// Values are string, int64, float64 or nil.
type Record map[string]any

// ID returns the record's surrogate identity.
func (r Record) ID() int64 {
	id, _ := r["id"].(int64)
	return id
}

// NowISO returns the current time formatted the way timestamp columns
// store it.
func NowISO() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}

// Store provides the five accessor operations against the SQLite
// database. Each operation runs in its own transaction.
type Store struct {
	db     *database.SQLite
	logger *logger.Logger
}

// New creates a store over the given database handle.
func New(db *database.SQLite, logger *logger.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates every catalog table that does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, kind := range model.All {
		if _, err := s.db.DB().ExecContext(ctx, kind.CreateTableSQL()); err != nil {
			return fmt.Errorf("create table %s: %w", kind.Table, err)
		}
	}
	s.logger.Debugf("Schema ensured for %d entity kinds", len(model.All))
	return nil
}

// List returns all records of the kind matching the given equality
// filters. Filter entries with nil values are skipped, unknown keys are
// ignored, and a slice value becomes an IN condition. Order is the
// store's natural order.
func (s *Store) List(ctx context.Context, kind *model.Kind, filters map[string]any) ([]Record, error) {
	return listRecords(ctx, s.db.DB(), kind, filters)
}

// Count returns the number of records matching the filters, with the
// same filter semantics as List.
func (s *Store) Count(ctx context.Context, kind *model.Kind, filters map[string]any) (int64, error) {
	return countRecords(ctx, s.db.DB(), kind, filters)
}

// Get returns the record with the given id, or a NotFoundError.
func (s *Store) Get(ctx context.Context, kind *model.Kind, id int64) (Record, error) {
	return getRecord(ctx, s.db.DB(), kind, id)
}

// Create persists a new record. Only caller-supplied fields are
// applied; extra fields override same-named input fields; catalog
// defaults fill omitted columns; created_at is stamped when the kind
// defines it and the caller did not supply one.
func (s *Store) Create(ctx context.Context, kind *model.Kind, fields, extra Record) (Record, error) {
	var created Record
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		created, err = tx.Create(ctx, kind, fields, extra)
		return err
	})
	if err == nil {
		s.logger.Debugf("Created %s %d", kind.Name, created.ID())
	}
	return created, err
}

// Update applies the caller-supplied fields onto the existing record,
// stamping updated_at when the kind defines it. Untouched fields keep
// their prior values.
func (s *Store) Update(ctx context.Context, kind *model.Kind, id int64, fields Record) (Record, error) {
	var updated Record
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		updated, err = tx.Update(ctx, kind, id, fields)
		return err
	})
	return updated, err
}

// Delete removes the record permanently, failing with NotFoundError if
// it does not exist.
func (s *Store) Delete(ctx context.Context, kind *model.Kind, id int64) error {
	err := s.WithTx(ctx, func(tx *Tx) error {
		return tx.Delete(ctx, kind, id)
	})
	if err == nil {
		s.logger.Debugf("Deleted %s %d", kind.Name, id)
	}
	return err
}

// Clear removes every record of the kind. Used by the demo seeder.
func (s *Store) Clear(ctx context.Context, kind *model.Kind) error {
	_, err := s.db.DB().ExecContext(ctx, "DELETE FROM "+kind.Table)
	if err != nil {
		return fmt.Errorf("clear %s: %w", kind.Table, err)
	}
	return nil
}

// WithTx runs fn inside a single transaction, committing on nil return
// and rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Tx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tx exposes the accessor operations bound to one open transaction.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) List(ctx context.Context, kind *model.Kind, filters map[string]any) ([]Record, error) {
	return listRecords(ctx, t.tx, kind, filters)
}

func (t *Tx) Count(ctx context.Context, kind *model.Kind, filters map[string]any) (int64, error) {
	return countRecords(ctx, t.tx, kind, filters)
}

func (t *Tx) Get(ctx context.Context, kind *model.Kind, id int64) (Record, error) {
	return getRecord(ctx, t.tx, kind, id)
}

func (t *Tx) Create(ctx context.Context, kind *model.Kind, fields, extra Record) (Record, error) {
	return createRecord(ctx, t.tx, kind, fields, extra)
}

func (t *Tx) Update(ctx context.Context, kind *model.Kind, id int64, fields Record) (Record, error) {
	return updateRecord(ctx, t.tx, kind, id, fields)
}

func (t *Tx) Delete(ctx context.Context, kind *model.Kind, id int64) error {
	return deleteRecord(ctx, t.tx, kind, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// buildWhere renders the filters into a WHERE clause. Iteration
// follows catalog column order (id first) so argument order is
// deterministic.
func buildWhere(kind *model.Kind, filters map[string]any) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}

	names := append([]string{"id"}, kind.ColumnNames()...)
	var conds []string
	var args []any
	for _, name := range names {
		val, ok := filters[name]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case []string:
			if len(v) == 0 {
				continue
			}
			placeholders := strings.Repeat("?, ", len(v))
			conds = append(conds, fmt.Sprintf("%s IN (%s)", name, placeholders[:len(placeholders)-2]))
			for _, item := range v {
				args = append(args, item)
			}
		case []any:
			if len(v) == 0 {
				continue
			}
			placeholders := strings.Repeat("?, ", len(v))
			conds = append(conds, fmt.Sprintf("%s IN (%s)", name, placeholders[:len(placeholders)-2]))
			args = append(args, v...)
		default:
			conds = append(conds, name+" = ?")
			args = append(args, v)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func selectColumns(kind *model.Kind) string {
	return "id, " + strings.Join(kind.ColumnNames(), ", ")
}

// scanRecord reads one row into a Record, mapping SQL NULL to nil.
func scanRecord(kind *model.Kind, scan func(dest ...any) error) (Record, error) {
	var id int64
	dests := make([]any, 0, len(kind.Columns)+1)
	dests = append(dests, &id)

	texts := make([]sql.NullString, len(kind.Columns))
	ints := make([]sql.NullInt64, len(kind.Columns))
	reals := make([]sql.NullFloat64, len(kind.Columns))
	for i, col := range kind.Columns {
		switch col.Type {
		case model.Integer:
			dests = append(dests, &ints[i])
		case model.Real:
			dests = append(dests, &reals[i])
		default:
			dests = append(dests, &texts[i])
		}
	}

	if err := scan(dests...); err != nil {
		return nil, err
	}

	rec := Record{"id": id}
	for i, col := range kind.Columns {
		switch col.Type {
		case model.Integer:
			if ints[i].Valid {
				rec[col.Name] = ints[i].Int64
			} else {
				rec[col.Name] = nil
			}
		case model.Real:
			if reals[i].Valid {
				rec[col.Name] = reals[i].Float64
			} else {
				rec[col.Name] = nil
			}
		default:
			if texts[i].Valid {
				rec[col.Name] = texts[i].String
			} else {
				rec[col.Name] = nil
			}
		}
	}
	return rec, nil
}

func listRecords(ctx context.Context, q querier, kind *model.Kind, filters map[string]any) ([]Record, error) {
	where, args := buildWhere(kind, filters)
	query := fmt.Sprintf("SELECT %s FROM %s%s", selectColumns(kind), kind.Table, where)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Table, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(kind, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.Table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Table, err)
	}
	return records, nil
}

func countRecords(ctx context.Context, q querier, kind *model.Kind, filters map[string]any) (int64, error) {
	where, args := buildWhere(kind, filters)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", kind.Table, where)

	var count int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind.Table, err)
	}
	return count, nil
}

func getRecord(ctx context.Context, q querier, kind *model.Kind, id int64) (Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns(kind), kind.Table)

	row := q.QueryRowContext(ctx, query, id)
	rec, err := scanRecord(kind, row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Kind: kind.Name, ID: id}
		}
		return nil, fmt.Errorf("get %s %d: %w", kind.Table, id, err)
	}
	return rec, nil
}

// coerceValue normalizes a caller-supplied value to the column's
// storage type. JSON decoding hands every number over as float64, so
// integer columns accept whole floats.
func coerceValue(kind *model.Kind, col model.Column, val any) (any, error) {
	if val == nil {
		return nil, nil
	}
	switch col.Type {
	case model.Integer:
		switch v := val.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case float64:
			if v == float64(int64(v)) {
				return int64(v), nil
			}
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case model.Real:
		switch v := val.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	default:
		if v, ok := val.(string); ok {
			return v, nil
		}
	}
	return nil, &ValueError{Kind: kind.Name, Field: col.Name, Value: val}
}

// applyInput filters fields down to catalog columns, coercing values.
// Unknown keys are dropped silently.
func applyInput(kind *model.Kind, fields Record, values Record) error {
	for _, col := range kind.Columns {
		val, ok := fields[col.Name]
		if !ok {
			continue
		}
		coerced, err := coerceValue(kind, col, val)
		if err != nil {
			return err
		}
		values[col.Name] = coerced
	}
	return nil
}

func createRecord(ctx context.Context, q querier, kind *model.Kind, fields, extra Record) (Record, error) {
	values := Record{}
	if err := applyInput(kind, fields, values); err != nil {
		return nil, err
	}
	if err := applyInput(kind, extra, values); err != nil {
		return nil, err
	}
	for _, col := range kind.Columns {
		if col.Default == nil {
			continue
		}
		if _, ok := values[col.Name]; !ok {
			values[col.Name] = col.Default
		}
	}
	if kind.HasCreatedAt() {
		if _, ok := values["created_at"]; !ok {
			values["created_at"] = NowISO()
		}
	}

	var res sql.Result
	var err error
	if len(values) == 0 {
		res, err = q.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", kind.Table))
	} else {
		cols := make([]string, 0, len(values))
		for _, col := range kind.Columns {
			if _, ok := values[col.Name]; ok {
				cols = append(cols, col.Name)
			}
		}
		args := make([]any, len(cols))
		for i, name := range cols {
			args[i] = values[name]
		}
		placeholders := strings.Repeat("?, ", len(cols))
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			kind.Table, strings.Join(cols, ", "), placeholders[:len(placeholders)-2])
		res, err = q.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind.Table, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind.Table, err)
	}
	return getRecord(ctx, q, kind, id)
}

func updateRecord(ctx context.Context, q querier, kind *model.Kind, id int64, fields Record) (Record, error) {
	if _, err := getRecord(ctx, q, kind, id); err != nil {
		return nil, err
	}

	values := Record{}
	if err := applyInput(kind, fields, values); err != nil {
		return nil, err
	}
	if kind.HasUpdatedAt() {
		values["updated_at"] = NowISO()
	}

	if len(values) > 0 {
		cols := make([]string, 0, len(values))
		for _, col := range kind.Columns {
			if _, ok := values[col.Name]; ok {
				cols = append(cols, col.Name)
			}
		}
		sets := make([]string, len(cols))
		args := make([]any, 0, len(cols)+1)
		for i, name := range cols {
			sets[i] = name + " = ?"
			args = append(args, values[name])
		}
		args = append(args, id)
		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", kind.Table, strings.Join(sets, ", "))
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("update %s %d: %w", kind.Table, id, err)
		}
	}

	return getRecord(ctx, q, kind, id)
}

func deleteRecord(ctx context.Context, q querier, kind *model.Kind, id int64) error {
	if _, err := getRecord(ctx, q, kind, id); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", kind.Table), id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind.Table, id, err)
	}
	return nil
}
