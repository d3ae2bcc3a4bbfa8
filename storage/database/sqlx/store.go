// Package sqlxstore is the SQL core.EntityStore, on PostgreSQL or SQLite.
package sqlxstore

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/record"
)

const sqlite = "sqlite3"

type store struct {
	db     *sqlx.DB
	sqlite bool
	// now is mockable
	now func() time.Time
}

var (
	_ core.EntityStore    = (*store)(nil) // interface compliance check
	_ core.SourceUpserter = (*store)(nil)
)

func NewStore(db *sqlx.DB) core.EntityStore {
	return &store{
		db:     db,
		sqlite: db.DriverName() == sqlite,
		now:    time.Now,
	}
}

func (s *store) GetAll(ctx context.Context, coll core.Collection, q core.Query) ([]record.Record, error) {
	schema, err := core.SchemaOf(coll)
	if err != nil {
		return nil, core.NewStoreError("list", coll, err)
	}
	filters, err := schema.NormalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}
	if err = schema.CheckOrderings(q.Orderings); err != nil {
		return nil, err
	}

	var (
		b    strings.Builder
		args = make([]interface{}, 0, len(filters))
	)
	b.WriteString("SELECT " + columnList(schema) + " FROM " + quote(string(coll)))
	for i, f := range filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(quote(f.Column) + " " + string(f.Op) + " ?")
		args = append(args, s.bindValue(f.Value))
	}
	b.WriteString(" ORDER BY ")
	for _, ord := range q.Orderings {
		b.WriteString(quote(ord.Field) + " " + direction(ord) + ", ")
	}
	b.WriteString(quote(tieBreaker(schema)) + " ASC")

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(b.String()), args...)
	if err != nil {
		return nil, core.NewStoreError("list", coll, err)
	}
	defer func() { _ = rows.Close() }()

	recs := make([]record.Record, 0)
	for rows.Next() {
		rec := make(record.Record, len(schema.Columns))
		if err = rows.MapScan(rec); err != nil {
			return nil, core.NewStoreError("list", coll, err)
		}
		recs = append(recs, schema.Canonical(rec))
	}
	if err = rows.Err(); err != nil {
		return nil, core.NewStoreError("list", coll, err)
	}
	return recs, nil
}

func (s *store) GetByID(ctx context.Context, coll core.Collection, id string) (record.Record, error) {
	schema, err := core.SchemaOf(coll)
	if err != nil {
		return nil, core.NewStoreError("get", coll, err)
	}
	q := "SELECT " + columnList(schema) + " FROM " + quote(string(coll)) + ` WHERE "id" = ?`
	rec, err := s.queryRow(ctx, schema, q, id)
	if err != nil {
		return nil, core.NewStoreError("get", coll, err)
	}
	return rec, nil
}

func (s *store) Create(ctx context.Context, coll core.Collection, rec record.Record) (record.Record, error) {
	schema, err := core.SchemaOf(coll)
	if err != nil {
		return nil, core.NewStoreError("create", coll, err)
	}
	data, err := schema.Normalize(rec)
	if err != nil {
		return nil, err
	}
	s.stampNew(schema, data)

	cols, args := s.columnsAndArgs(data)
	q := "INSERT INTO " + quote(string(coll)) + " (" + quoteAll(cols) + ") VALUES (" + placeholders(len(cols)) + ")" +
		" RETURNING " + columnList(schema)

	saved, err := s.queryRow(ctx, schema, q, args...)
	if err != nil {
		return nil, core.NewStoreError("create", coll, err)
	}
	return saved, nil
}

func (s *store) Update(ctx context.Context, coll core.Collection, id string, partial record.Record) (record.Record, error) {
	schema, err := core.SchemaOf(coll)
	if err != nil {
		return nil, core.NewStoreError("update", coll, err)
	}
	data, err := schema.Normalize(partial)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	delete(data, "created_at")
	if schema.Has("updated_at") {
		data["updated_at"] = s.clock()
	}
	if len(data) == 0 {
		return s.GetByID(ctx, coll, id)
	}

	cols, args := s.columnsAndArgs(data)
	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		sets = append(sets, quote(col)+" = ?")
	}
	q := "UPDATE " + quote(string(coll)) + " SET " + strings.Join(sets, ", ") + ` WHERE "id" = ?` +
		" RETURNING " + columnList(schema)

	saved, err := s.queryRow(ctx, schema, q, append(args, id)...)
	if err != nil {
		return nil, core.NewStoreError("update", coll, err)
	}
	return saved, nil
}

func (s *store) Delete(ctx context.Context, coll core.Collection, id string) error {
	if _, err := core.SchemaOf(coll); err != nil {
		return core.NewStoreError("delete", coll, err)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+quote(string(coll))+` WHERE "id" = ?`), id)
	if err != nil {
		return core.NewStoreError("delete", coll, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStoreError("delete", coll, err)
	}
	if n == 0 {
		return core.NewStoreError("delete", coll, core.ErrNotFound)
	}
	return nil
}

// UpsertBySource writes rec in one statement, relying on the partial unique index on
// (source_type, source_id) of derived calendar events.
func (s *store) UpsertBySource(ctx context.Context, rec record.Record) (record.Record, error) {
	coll := core.CalendarEvents
	schema, err := core.SchemaOf(coll)
	if err != nil {
		return nil, core.NewStoreError("upsert", coll, err)
	}
	data, err := schema.Normalize(rec)
	if err != nil {
		return nil, err
	}
	if st, _ := data["source_type"].(string); st == "" || st == "manual" {
		return nil, core.NewStoreError("upsert", coll, errors.New("upsert needs a derived source type"))
	}
	s.stampNew(schema, data)

	cols, args := s.columnsAndArgs(data)
	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		switch col {
		case "id", "created_at", "source_type", "source_id":
			continue
		}
		updates = append(updates, quote(col)+" = excluded."+quote(col))
	}
	q := "INSERT INTO " + quote(string(coll)) + " (" + quoteAll(cols) + ") VALUES (" + placeholders(len(cols)) + ")" +
		` ON CONFLICT ("source_type", "source_id") WHERE "source_type" <> 'manual'` +
		" DO UPDATE SET " + strings.Join(updates, ", ") +
		" RETURNING " + columnList(schema)

	saved, err := s.queryRow(ctx, schema, q, args...)
	if err != nil {
		return nil, core.NewStoreError("upsert", coll, err)
	}
	return saved, nil
}

func (s *store) queryRow(ctx context.Context, schema core.Schema, q string, args ...interface{}) (record.Record, error) {
	rec := make(record.Record, len(schema.Columns))
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(q), args...).MapScan(rec)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return schema.Canonical(rec), nil
}

// stampNew sets the store assigned columns of a new row.
func (s *store) stampNew(schema core.Schema, data record.Record) {
	now := s.clock()
	data["id"] = uuid.New().String()
	if schema.Has("created_at") {
		data["created_at"] = now
	}
	if schema.Has("updated_at") {
		data["updated_at"] = now
	}
}

func (s *store) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// columnsAndArgs returns the columns of data in a stable order, with their bound values.
func (s *store) columnsAndArgs(data record.Record) ([]string, []interface{}) {
	cols := make([]string, 0, len(data))
	for col := range data {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		args = append(args, s.bindValue(data[col]))
	}
	return cols, args
}

// bindValue converts a normalized value for the driver. SQLite stores timestamps as
// TimestampLayout text, so that they compare and sort as dates.
func (s *store) bindValue(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok && s.sqlite {
		return core.FormatTimestamp(t)
	}
	return v
}

func columnList(schema core.Schema) string {
	cols := make([]string, 0, len(schema.Columns))
	for col := range schema.Columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return quoteAll(cols)
}

// tieBreaker keeps the order of rows with equal ordering values deterministic.
func tieBreaker(schema core.Schema) string {
	if schema.Has("created_at") {
		return "created_at"
	}
	return "id"
}

func direction(ord core.Ordering) string {
	if ord.Ascending {
		return "ASC"
	}
	return "DESC"
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func quoteAll(idents []string) string {
	quoted := make([]string, 0, len(idents))
	for _, ident := range idents {
		quoted = append(quoted, quote(ident))
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
