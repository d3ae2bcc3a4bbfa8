package core

import (
	"context"
	"strings"

	"github.com/trezcool/planner/core/record"
)

type Collection string

const (
	AcademicPeriods    Collection = "academic_periods"
	Subjects           Collection = "subjects"
	AnnualPlans        Collection = "annual_plans"
	TeachingPlans      Collection = "teaching_plans"
	LessonPlans        Collection = "lesson_plans"
	Assessments        Collection = "assessments"
	StudentAssessments Collection = "student_assessments"
	CalendarEvents     Collection = "calendar_events"
	Materials          Collection = "materials"
)

type (
	// EntityStore persists flat records (store shape, snake_case columns) in named collections.
	// Implementations are safe for concurrent use.
	EntityStore interface {
		GetAll(ctx context.Context, coll Collection, q Query) ([]record.Record, error)
		GetByID(ctx context.Context, coll Collection, id string) (record.Record, error)
		// Create assigns the record ID and returns the stored record.
		Create(ctx context.Context, coll Collection, rec record.Record) (record.Record, error)
		// Update only touches the columns present in partial.
		Update(ctx context.Context, coll Collection, id string, partial record.Record) (record.Record, error)
		Delete(ctx context.Context, coll Collection, id string) error
	}

	// SourceUpserter is implemented by stores able to create-or-update a calendar event keyed on
	// (source_type, source_id) in a single conditional write.
	SourceUpserter interface {
		UpsertBySource(ctx context.Context, rec record.Record) (record.Record, error)
	}
)

type FilterOp string

const (
	OpEq  FilterOp = "="
	OpGte FilterOp = ">="
	OpLte FilterOp = "<="
	OpLt  FilterOp = "<"
)

type Filter struct {
	Column string
	Op     FilterOp
	Value  interface{}
}

func Eq(column string, value interface{}) Filter  { return Filter{column, OpEq, value} }
func Gte(column string, value interface{}) Filter { return Filter{column, OpGte, value} }
func Lte(column string, value interface{}) Filter { return Filter{column, OpLte, value} }
func Lt(column string, value interface{}) Filter  { return Filter{column, OpLt, value} }

// Ordering sorts query results on a single column.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Query composes filters (ANDed) and orderings before execution.
// The zero Query matches every record of a collection.
type Query struct {
	Filters   []Filter
	Orderings []Ordering
}

func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

func (q Query) OrderBy(orderings ...Ordering) Query {
	q.Orderings = append(append([]Ordering(nil), q.Orderings...), orderings...)
	return q
}

// ParseOrdering parses a comma separated list of fields, each optionally prefixed by "-" for
// descending order (e.g. "-startDate,title").
func ParseOrdering(s string) []Ordering {
	var ords []Ordering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ords = append(ords, Ordering{Field: field, Ascending: !descending})
	}
	return ords
}
