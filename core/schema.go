package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/planner/core/record"
)

type ColumnType int

const (
	ColString ColumnType = iota
	ColInt
	ColFloat
	ColBool
	ColTimestamp
)

// Schema declares the columns a collection accepts. Stores reject any other column, so a
// misspelled field never silently becomes a new one.
type Schema struct {
	Columns map[string]ColumnType
	// DateColumn is the primary date of the collection: range filters and default ordering apply to it.
	DateColumn string
}

var (
	errUnknownColumn = "unknown field"
	errBadValue      = "invalid value"
)

var (
	auditColumns = map[string]ColumnType{
		"id":         ColString,
		"created_at": ColTimestamp,
		"updated_at": ColTimestamp,
	}

	Schemas = map[Collection]Schema{
		AcademicPeriods: newSchema("start_date", map[string]ColumnType{
			"name":       ColString,
			"year":       ColInt,
			"start_date": ColTimestamp,
			"end_date":   ColTimestamp,
			"is_current": ColBool,
		}),
		Subjects: newSchema("name", map[string]ColumnType{
			"name":        ColString,
			"code":        ColString,
			"description": ColString,
			"color":       ColString,
			"workload":    ColInt,
		}),
		AnnualPlans: newSchema("year", map[string]ColumnType{
			"title":              ColString,
			"subject_id":         ColString,
			"academic_period_id": ColString,
			"year":               ColInt,
			"grade":              ColString,
			"objectives":         ColString,
			"methodology":        ColString,
			"evaluation":         ColString,
		}),
		TeachingPlans: newSchema("start_date", map[string]ColumnType{
			"title":          ColString,
			"subject_id":     ColString,
			"annual_plan_id": ColString,
			"start_date":     ColTimestamp,
			"end_date":       ColTimestamp,
			"objectives":     ColString,
			"content":        ColString,
			"methodology":    ColString,
			"resources":      ColString,
			"evaluation":     ColString,
		}),
		LessonPlans: newSchema("date", map[string]ColumnType{
			"title":            ColString,
			"teaching_plan_id": ColString,
			"date":             ColTimestamp,
			"duration":         ColInt,
			"objectives":       ColString,
			"content":          ColString,
			"activities":       ColString,
			"resources":        ColString,
			"homework":         ColString,
			"status":           ColString,
		}),
		Assessments: newSchema("date", map[string]ColumnType{
			"title":              ColString,
			"description":        ColString,
			"subject_id":         ColString,
			"academic_period_id": ColString,
			"type":               ColString,
			"date":               ColTimestamp,
			"due_date":           ColTimestamp,
			"total_points":       ColFloat,
			"weight":             ColFloat,
		}),
		StudentAssessments: newSchema("created_at", map[string]ColumnType{
			"assessment_id": ColString,
			"student_name":  ColString,
			"score":         ColFloat,
			"feedback":      ColString,
			"submitted_at":  ColTimestamp,
		}),
		CalendarEvents: {
			DateColumn: "start_date",
			Columns: map[string]ColumnType{
				"id":               ColString,
				"title":            ColString,
				"description":      ColString,
				"start_date":       ColTimestamp,
				"end_date":         ColTimestamp,
				"all_day":          ColBool,
				"type":             ColString,
				"subject_id":       ColString,
				"lesson_plan_id":   ColString,
				"assessment_id":    ColString,
				"teaching_plan_id": ColString,
				"location":         ColString,
				"color":            ColString,
				"source_type":      ColString,
				"source_id":        ColString,
				"created_at":       ColTimestamp,
			},
		},
		Materials: newSchema("created_at", map[string]ColumnType{
			"title":          ColString,
			"description":    ColString,
			"type":           ColString,
			"url":            ColString,
			"subject_id":     ColString,
			"lesson_plan_id": ColString,
		}),
	}
)

func newSchema(dateCol string, cols map[string]ColumnType) Schema {
	for col, typ := range auditColumns {
		cols[col] = typ
	}
	return Schema{Columns: cols, DateColumn: dateCol}
}

// SchemaOf returns the schema of coll, or an error for an unknown collection.
func SchemaOf(coll Collection) (Schema, error) {
	s, ok := Schemas[coll]
	if !ok {
		return Schema{}, errors.Errorf("unknown collection %q", coll)
	}
	return s, nil
}

func (s Schema) Has(col string) bool {
	_, ok := s.Columns[col]
	return ok
}

// Normalize converts the values of an incoming store record to their column's Go type:
// string, int64, float64, bool or time.Time (UTC). nil is kept as is.
// Field errors name columns in application shape (camelCase).
func (s Schema) Normalize(rec record.Record) (record.Record, error) {
	out := make(record.Record, len(rec))
	var flds []FieldError
	for col, val := range rec {
		typ, ok := s.Columns[col]
		if !ok {
			flds = append(flds, FieldError{Field: record.CamelCase(col), Error: errUnknownColumn})
			continue
		}
		v, err := NormalizeValue(typ, val)
		if err != nil {
			flds = append(flds, FieldError{Field: record.CamelCase(col), Error: errBadValue})
			continue
		}
		out[col] = v
	}
	if flds != nil {
		return nil, NewValidationError(nil, flds...)
	}
	return out, nil
}

// NormalizeFilters checks filter columns and converts filter values like Normalize does.
func (s Schema) NormalizeFilters(filters []Filter) ([]Filter, error) {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		typ, ok := s.Columns[f.Column]
		if !ok {
			return nil, NewValidationError(nil, FieldError{Field: record.CamelCase(f.Column), Error: errUnknownColumn})
		}
		v, err := NormalizeValue(typ, f.Value)
		if err != nil {
			return nil, NewValidationError(nil, FieldError{Field: record.CamelCase(f.Column), Error: errBadValue})
		}
		f.Value = v
		out = append(out, f)
	}
	return out, nil
}

// CheckOrderings makes sure every ordering field is a declared column.
func (s Schema) CheckOrderings(ords []Ordering) error {
	for _, ord := range ords {
		if !s.Has(ord.Field) {
			return NewValidationError(nil, FieldError{Field: "ordering", Error: errUnknownColumn + ": " + record.CamelCase(ord.Field)})
		}
	}
	return nil
}

// Canonical converts a record read back from a store to its wire form: timestamps become
// TimestampLayout strings and driver specific values ([]byte, integer booleans) are unwrapped.
func (s Schema) Canonical(rec record.Record) record.Record {
	out := make(record.Record, len(rec))
	for col, val := range rec {
		typ, ok := s.Columns[col]
		if !ok {
			continue
		}
		if b, isBytes := val.([]byte); isBytes {
			val = string(b)
		}
		v, err := NormalizeValue(typ, val)
		if err != nil {
			out[col] = val
			continue
		}
		if t, isTime := v.(time.Time); isTime {
			v = FormatTimestamp(t)
		}
		out[col] = v
	}
	return out
}

// NormalizeValue converts val to the Go type of a column of type typ.
func NormalizeValue(typ ColumnType, val interface{}) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch typ {
	case ColString:
		switch v := val.(type) {
		case string:
			return v, nil
		case json.Number:
			return v.String(), nil
		}
	case ColInt:
		switch v := val.(type) {
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v == math.Trunc(v) {
				return int64(v), nil
			}
		case json.Number:
			return v.Int64()
		case string:
			return strconv.ParseInt(v, 10, 64)
		}
	case ColFloat:
		switch v := val.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			return v.Float64()
		case string:
			return strconv.ParseFloat(v, 64)
		}
	case ColBool:
		switch v := val.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case int:
			return v != 0, nil
		case string:
			return strconv.ParseBool(v)
		}
	case ColTimestamp:
		switch v := val.(type) {
		case time.Time:
			return v.UTC(), nil
		case Timestamp:
			if v.IsZero() {
				return nil, nil
			}
			return v.Time.UTC(), nil
		case string:
			if v == "" {
				return nil, nil
			}
			return ParseTimestamp(v)
		}
	}
	return nil, fmt.Errorf("unexpected %T value for column type %d", val, typ)
}
