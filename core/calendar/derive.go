package calendar

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/planning"
	"github.com/trezcool/planner/core/record"
)

// Source is a planning entity mirrored on the calendar: an assessment, a lesson plan or a teaching plan.
// The set of sources is closed; build one with FromAssessment, FromLessonPlan or FromTeachingPlan.
type Source interface {
	Ref() (SourceType, string)
	// derive computes the mirrored event fields; ok is false when required data is missing.
	derive() (d Derived, ok bool)
}

type (
	assessmentSource struct {
		a planning.Assessment
	}

	lessonPlanSource struct {
		lp planning.LessonPlan
		// subjectID is the owning teaching plan's subject, once resolved.
		subjectID null.String
		resolved  bool
	}

	teachingPlanSource struct {
		tp planning.TeachingPlan
	}
)

var (
	_ Source = assessmentSource{}
	_ Source = lessonPlanSource{}
	_ Source = teachingPlanSource{}
)

func FromAssessment(a planning.Assessment) Source { return assessmentSource{a: a} }

// FromLessonPlan mirrors lp. When owner is given, its subject is used for the event; otherwise the
// Synchronizer looks the owning teaching plan up.
func FromLessonPlan(lp planning.LessonPlan, owner ...planning.TeachingPlan) Source {
	src := lessonPlanSource{lp: lp}
	if len(owner) > 0 {
		src.subjectID, src.resolved = owner[0].SubjectID, true
	}
	return src
}

func FromTeachingPlan(tp planning.TeachingPlan) Source { return teachingPlanSource{tp: tp} }

// Derived holds the fields of a calendar event that are computed from its source.
type Derived struct {
	SourceType     SourceType
	SourceID       string
	Title          string
	Description    null.String
	StartDate      time.Time
	EndDate        *time.Time
	AllDay         bool
	Type           EventType
	Color          string
	SubjectID      null.String
	AssessmentID   null.String
	LessonPlanID   null.String
	TeachingPlanID null.String
}

// Derive applies the derivation rule of src's kind. ok is false when src lacks its id or its date.
func Derive(src Source) (Derived, bool) {
	return src.derive()
}

func (s assessmentSource) Ref() (SourceType, string) { return SourceAssessment, s.a.ID }

func (s assessmentSource) derive() (Derived, bool) {
	a := s.a
	if a.ID == "" || a.Date.IsZero() {
		return Derived{}, false
	}
	end := a.Date.Time
	if !a.DueDate.IsZero() {
		end = a.DueDate.Time
	}
	return Derived{
		SourceType:   SourceAssessment,
		SourceID:     a.ID,
		Title:        "Avaliação: " + a.Title,
		Description:  a.Description,
		StartDate:    a.Date.Time,
		EndDate:      &end,
		AllDay:       true,
		Type:         TypeExam,
		Color:        ColorExam,
		SubjectID:    a.SubjectID,
		AssessmentID: null.StringFrom(a.ID),
	}, true
}

func (s lessonPlanSource) Ref() (SourceType, string) { return SourceLessonPlan, s.lp.ID }

func (s lessonPlanSource) derive() (Derived, bool) {
	lp := s.lp
	if lp.ID == "" || lp.Date.IsZero() {
		return Derived{}, false
	}
	end := lp.Date.Add(time.Duration(lp.Duration) * time.Minute)
	return Derived{
		SourceType:     SourceLessonPlan,
		SourceID:       lp.ID,
		Title:          "Aula: " + lp.Title,
		StartDate:      lp.Date.Time,
		EndDate:        &end,
		AllDay:         false,
		Type:           TypeClass,
		Color:          ColorClass,
		SubjectID:      s.subjectID,
		LessonPlanID:   null.StringFrom(lp.ID),
		TeachingPlanID: lp.TeachingPlanID,
	}, true
}

func (s teachingPlanSource) Ref() (SourceType, string) { return SourceTeachingPlan, s.tp.ID }

func (s teachingPlanSource) derive() (Derived, bool) {
	tp := s.tp
	if tp.ID == "" || tp.StartDate.IsZero() {
		return Derived{}, false
	}
	return Derived{
		SourceType:     SourceTeachingPlan,
		SourceID:       tp.ID,
		Title:          "Plano de Ensino: " + tp.Title,
		StartDate:      tp.StartDate.Time,
		EndDate:        tp.EndDate.Ptr(),
		AllDay:         true,
		Type:           TypeClass,
		Color:          ColorTeachingPlan,
		SubjectID:      tp.SubjectID,
		TeachingPlanID: null.StringFrom(tp.ID),
	}, true
}

// Record returns the derived fields in store shape. Every derived column is present, so writing
// the record overwrites a stale mirror completely.
func (d Derived) Record() record.Record {
	var end interface{}
	if d.EndDate != nil {
		end = core.FormatTimestamp(*d.EndDate)
	}
	return record.Record{
		"title":            d.Title,
		"description":      nullable(d.Description),
		"start_date":       core.FormatTimestamp(d.StartDate),
		"end_date":         end,
		"all_day":          d.AllDay,
		"type":             string(d.Type),
		"color":            d.Color,
		"subject_id":       nullable(d.SubjectID),
		"assessment_id":    nullable(d.AssessmentID),
		"lesson_plan_id":   nullable(d.LessonPlanID),
		"teaching_plan_id": nullable(d.TeachingPlanID),
		"source_type":      string(d.SourceType),
		"source_id":        d.SourceID,
	}
}

func nullable(s null.String) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}
