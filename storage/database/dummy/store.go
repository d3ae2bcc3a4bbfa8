package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/record"
)

var errDuplicateSource = errors.New("a calendar event already mirrors this source")

type store struct {
	db *DB
}

var (
	_ core.EntityStore    = (*store)(nil) // interface compliance check
	_ core.SourceUpserter = (*store)(nil)
)

func NewStore(db *DB) core.EntityStore {
	return &store{db: db}
}

func (s *store) GetAll(_ context.Context, coll core.Collection, q core.Query) ([]record.Record, error) {
	tbl, schema, err := s.db.table(coll)
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

	tbl.RLock()
	defer tbl.RUnlock()

	rows := make([]*row, 0, len(tbl.rows))
	for _, r := range tbl.rows {
		if matches(r.data, filters) {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range q.Orderings {
			c := compare(rows[i].data[ord.Field], rows[j].data[ord.Field])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return rows[i].seq < rows[j].seq
	})

	recs := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, schema.Canonical(r.data))
	}
	return recs, nil
}

func (s *store) GetByID(_ context.Context, coll core.Collection, id string) (record.Record, error) {
	tbl, schema, err := s.db.table(coll)
	if err != nil {
		return nil, core.NewStoreError("get", coll, err)
	}

	tbl.RLock()
	defer tbl.RUnlock()

	r, ok := tbl.rows[id]
	if !ok {
		return nil, core.NewStoreError("get", coll, core.ErrNotFound)
	}
	return schema.Canonical(r.data), nil
}

func (s *store) Create(_ context.Context, coll core.Collection, rec record.Record) (record.Record, error) {
	tbl, schema, err := s.db.table(coll)
	if err != nil {
		return nil, core.NewStoreError("create", coll, err)
	}
	data, err := schema.Normalize(rec)
	if err != nil {
		return nil, err
	}

	tbl.Lock()
	defer tbl.Unlock()

	if coll == core.CalendarEvents {
		if dup := tbl.findBySource(data); dup != nil {
			return nil, core.NewStoreError("create", coll, errDuplicateSource)
		}
	}
	return schema.Canonical(s.insert(tbl, schema, data)), nil
}

func (s *store) Update(_ context.Context, coll core.Collection, id string, partial record.Record) (record.Record, error) {
	tbl, schema, err := s.db.table(coll)
	if err != nil {
		return nil, core.NewStoreError("update", coll, err)
	}
	data, err := schema.Normalize(partial)
	if err != nil {
		return nil, err
	}
	delete(data, "id")

	tbl.Lock()
	defer tbl.Unlock()

	r, ok := tbl.rows[id]
	if !ok {
		return nil, core.NewStoreError("update", coll, core.ErrNotFound)
	}
	s.merge(schema, r, data)
	return schema.Canonical(r.data), nil
}

func (s *store) Delete(_ context.Context, coll core.Collection, id string) error {
	tbl, _, err := s.db.table(coll)
	if err != nil {
		return core.NewStoreError("delete", coll, err)
	}

	tbl.Lock()
	if _, ok := tbl.rows[id]; !ok {
		tbl.Unlock()
		return core.NewStoreError("delete", coll, core.ErrNotFound)
	}
	delete(tbl.rows, id)
	tbl.Unlock()

	s.db.release(coll, id)
	return nil
}

// UpsertBySource creates or updates the calendar event of rec's (source_type, source_id) under a single lock.
func (s *store) UpsertBySource(_ context.Context, rec record.Record) (record.Record, error) {
	tbl, schema, err := s.db.table(core.CalendarEvents)
	if err != nil {
		return nil, core.NewStoreError("upsert", core.CalendarEvents, err)
	}
	data, err := schema.Normalize(rec)
	if err != nil {
		return nil, err
	}
	delete(data, "id")

	tbl.Lock()
	defer tbl.Unlock()

	if r := tbl.findBySource(data); r != nil {
		s.merge(schema, r, data)
		return schema.Canonical(r.data), nil
	}
	return schema.Canonical(s.insert(tbl, schema, data)), nil
}

func (s *store) insert(tbl *table, schema core.Schema, data record.Record) record.Record {
	now := s.db.clock()
	data["id"] = uuid.New().String()
	if schema.Has("created_at") {
		data["created_at"] = now
	}
	if schema.Has("updated_at") {
		data["updated_at"] = now
	}
	for col := range schema.Columns {
		if _, ok := data[col]; !ok {
			data[col] = defaultValue(col)
		}
	}

	tbl.seq++
	tbl.rows[data["id"].(string)] = &row{seq: tbl.seq, data: data}
	return data
}

func (s *store) merge(schema core.Schema, r *row, data record.Record) {
	for col, val := range data {
		if col == "created_at" {
			continue
		}
		r.data[col] = val
	}
	if schema.Has("updated_at") {
		r.data["updated_at"] = s.db.clock()
	}
}

// findBySource returns the derived event row with the same source reference as data. Caller holds the lock.
func (tbl *table) findBySource(data record.Record) *row {
	st, _ := data["source_type"].(string)
	id, _ := data["source_id"].(string)
	if st == "" || st == "manual" || id == "" {
		return nil
	}
	for _, r := range tbl.rows {
		if r.data["source_type"] == st && r.data["source_id"] == id {
			return r
		}
	}
	return nil
}

// defaultValue mirrors the column defaults of the SQL schema.
func defaultValue(col string) interface{} {
	switch col {
	case "all_day", "is_current":
		return false
	}
	return nil
}

func matches(data record.Record, filters []core.Filter) bool {
	for _, f := range filters {
		c, ok := compareOK(data[f.Column], f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case core.OpEq:
			if c != 0 {
				return false
			}
		case core.OpGte:
			if c < 0 {
				return false
			}
		case core.OpLte:
			if c > 0 {
				return false
			}
		case core.OpLt:
			if c >= 0 {
				return false
			}
		}
	}
	return true
}

// compareOK compares two normalized values of the same column. ok is false when either is nil,
// like a SQL comparison with NULL.
func compareOK(a, b interface{}) (c int, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return compare(a, b), true
}

// compare orders normalized values; nil sorts first.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmpOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmpOrdered(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	}
	return 0
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
