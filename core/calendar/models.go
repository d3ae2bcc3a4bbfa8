package calendar

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/planner/core"
)

type EventType string

const (
	TypeClass    EventType = "class"
	TypeExam     EventType = "exam"
	TypeMeeting  EventType = "meeting"
	TypeDeadline EventType = "deadline"
	TypeOther    EventType = "other"
)

// SourceType names what a calendar event mirrors.
type SourceType string

const (
	SourceAssessment        SourceType = "assessment"
	SourceLessonPlan        SourceType = "lesson_plan"
	SourceTeachingPlan      SourceType = "teaching_plan"
	SourceStudentAssessment SourceType = "student_assessment"
	SourceManual            SourceType = "manual"
)

// IsDerived reports whether events of this source type are maintained by the Synchronizer.
func (st SourceType) IsDerived() bool {
	return st != "" && st != SourceManual
}

// Fixed colors of derived events.
const (
	ColorExam         = "#ef4444"
	ColorClass        = "#3b82f6"
	ColorTeachingPlan = "#10b981"
)

type Event struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    null.String    `json:"description"`
	StartDate      core.Timestamp `json:"startDate"`
	EndDate        core.Timestamp `json:"endDate"`
	AllDay         bool           `json:"allDay"`
	Type           EventType      `json:"type"`
	SubjectID      null.String    `json:"subjectId"`
	LessonPlanID   null.String    `json:"lessonPlanId"`
	AssessmentID   null.String    `json:"assessmentId"`
	TeachingPlanID null.String    `json:"teachingPlanId"`
	Location       null.String    `json:"location"`
	Color          null.String    `json:"color"`
	SourceType     SourceType     `json:"sourceType"`
	SourceID       null.String    `json:"sourceId"`
	CreatedAt      core.Timestamp `json:"createdAt"`
}

// IsManual reports whether e was created by a user rather than mirrored from a planning entity.
func (e Event) IsManual() bool {
	return !e.SourceType.IsDerived()
}

// NewEvent contains what a user provides to create or replace a manual event.
type NewEvent struct {
	Title       string         `json:"title" validate:"required,notblank,max=200"`
	Description null.String    `json:"description"`
	StartDate   core.Timestamp `json:"startDate" validate:"required"`
	EndDate     core.Timestamp `json:"endDate"`
	AllDay      bool           `json:"allDay"`
	Type        EventType      `json:"type" validate:"oneof=class exam meeting deadline other"`
	SubjectID   null.String    `json:"subjectId"`
	Location    null.String    `json:"location" validate:"omitempty,max=200"`
	Color       null.String    `json:"color" validate:"omitempty,hexcolor"`

	// always manual, set by the service
	SourceType SourceType  `json:"sourceType" validate:"-"`
	SourceID   null.String `json:"sourceId" validate:"-"`
}

func (ne *NewEvent) Clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.Type = EventType(core.CleanString(string(ne.Type), true /* lower */))
	if ne.Type == "" {
		ne.Type = TypeOther
	}
	ne.SourceType = SourceManual
	ne.SourceID = null.String{}
}

// UpdateEvent defines what may be changed on a manual event.
type UpdateEvent struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string         `json:"description,omitempty"`
	StartDate   *core.Timestamp `json:"startDate,omitempty"`
	EndDate     *core.Timestamp `json:"endDate,omitempty"`
	AllDay      *bool           `json:"allDay,omitempty"`
	Type        *EventType      `json:"type,omitempty" validate:"omitempty,oneof=class exam meeting deadline other"`
	SubjectID   *string         `json:"subjectId,omitempty"`
	Location    *string         `json:"location,omitempty" validate:"omitempty,max=200"`
	Color       *string         `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (ue *UpdateEvent) Clean() {
	if ue.Title != nil {
		*ue.Title = core.CleanString(*ue.Title)
	}
	if ue.Type != nil {
		*ue.Type = EventType(core.CleanString(string(*ue.Type), true /* lower */))
	}
}
