// Package dummydb is an in-memory core.EntityStore, for tests and local runs without a database.
package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/record"
)

type (
	DB struct {
		mu     sync.Mutex
		tables map[core.Collection]*table
		// now is mockable
		now func() time.Time
	}

	table struct {
		sync.RWMutex
		rows map[string]*row
		seq  int
	}

	row struct {
		seq  int // insertion order
		data record.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		tables: make(map[core.Collection]*table, len(core.Schemas)),
		now:    time.Now,
	}
	for coll := range core.Schemas {
		db.tables[coll] = &table{rows: make(map[string]*row)}
	}
	return db, nil
}

// SetClock replaces the clock used for created_at and updated_at.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) clock() time.Time {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.now().UTC().Truncate(time.Second)
}

// Reset empties every collection.
func (db *DB) Reset() {
	for _, tbl := range db.tables {
		tbl.Lock()
		tbl.rows = make(map[string]*row)
		tbl.seq = 0
		tbl.Unlock()
	}
}

// reference is a column pointing at rows of another collection. Like the SQL schema's
// foreign keys, deleting the referenced row nulls the column, or deletes the row on cascade.
type reference struct {
	coll    core.Collection
	column  string
	cascade bool
}

var references = map[core.Collection][]reference{
	core.AcademicPeriods: {
		{coll: core.AnnualPlans, column: "academic_period_id"},
		{coll: core.Assessments, column: "academic_period_id"},
	},
	core.Subjects: {
		{coll: core.AnnualPlans, column: "subject_id"},
		{coll: core.TeachingPlans, column: "subject_id"},
		{coll: core.Assessments, column: "subject_id"},
		{coll: core.Materials, column: "subject_id"},
	},
	core.AnnualPlans:   {{coll: core.TeachingPlans, column: "annual_plan_id"}},
	core.TeachingPlans: {{coll: core.LessonPlans, column: "teaching_plan_id"}},
	core.LessonPlans:   {{coll: core.Materials, column: "lesson_plan_id"}},
	core.Assessments:   {{coll: core.StudentAssessments, column: "assessment_id", cascade: true}},
}

// release applies the references to the deleted row id of coll. updated_at is left as is.
func (db *DB) release(coll core.Collection, id string) {
	for _, ref := range references[coll] {
		tbl := db.tables[ref.coll]
		var removed []string

		tbl.Lock()
		for rowID, r := range tbl.rows {
			if v, ok := r.data[ref.column].(string); !ok || v != id {
				continue
			}
			if ref.cascade {
				delete(tbl.rows, rowID)
				removed = append(removed, rowID)
				continue
			}
			r.data[ref.column] = nil
		}
		tbl.Unlock()

		for _, rowID := range removed {
			db.release(ref.coll, rowID)
		}
	}
}

func (db *DB) table(coll core.Collection) (*table, core.Schema, error) {
	schema, err := core.SchemaOf(coll)
	if err != nil {
		return nil, core.Schema{}, err
	}
	return db.tables[coll], schema, nil
}
