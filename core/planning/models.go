package planning

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/planner/core"
)

// Assessment types
const (
	AssessmentExam         = "exam"
	AssessmentQuiz         = "quiz"
	AssessmentAssignment   = "assignment"
	AssessmentProject      = "project"
	AssessmentPresentation = "presentation"
	AssessmentOther        = "other"
)

// Lesson plan statuses
const (
	LessonPlanned   = "planned"
	LessonTaught    = "taught"
	LessonCancelled = "cancelled"
)

// Material types
const (
	MaterialDocument = "document"
	MaterialLink     = "link"
	MaterialVideo    = "video"
	MaterialOther    = "other"
)

type AcademicPeriod struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Year      int            `json:"year"`
	StartDate core.Timestamp `json:"startDate"`
	EndDate   core.Timestamp `json:"endDate"`
	IsCurrent bool           `json:"isCurrent"`
	CreatedAt core.Timestamp `json:"createdAt"`
	UpdatedAt core.Timestamp `json:"updatedAt"`
}

type Subject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Code        null.String    `json:"code"`
	Description null.String    `json:"description"`
	Color       null.String    `json:"color"`
	Workload    null.Int       `json:"workload"` // hours
	CreatedAt   core.Timestamp `json:"createdAt"`
	UpdatedAt   core.Timestamp `json:"updatedAt"`
}

type AnnualPlan struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	SubjectID        null.String    `json:"subjectId"`
	AcademicPeriodID null.String    `json:"academicPeriodId"`
	Year             int            `json:"year"`
	Grade            null.String    `json:"grade"`
	Objectives       null.String    `json:"objectives"`
	Methodology      null.String    `json:"methodology"`
	Evaluation       null.String    `json:"evaluation"`
	CreatedAt        core.Timestamp `json:"createdAt"`
	UpdatedAt        core.Timestamp `json:"updatedAt"`
}

type TeachingPlan struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	SubjectID    null.String    `json:"subjectId"`
	AnnualPlanID null.String    `json:"annualPlanId"`
	StartDate    core.Timestamp `json:"startDate"`
	EndDate      core.Timestamp `json:"endDate"`
	Objectives   null.String    `json:"objectives"`
	Content      null.String    `json:"content"`
	Methodology  null.String    `json:"methodology"`
	Resources    null.String    `json:"resources"`
	Evaluation   null.String    `json:"evaluation"`
	CreatedAt    core.Timestamp `json:"createdAt"`
	UpdatedAt    core.Timestamp `json:"updatedAt"`
}

type LessonPlan struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	TeachingPlanID null.String    `json:"teachingPlanId"`
	Date           core.Timestamp `json:"date"`
	Duration       int            `json:"duration"` // minutes
	Objectives     null.String    `json:"objectives"`
	Content        null.String    `json:"content"`
	Activities     null.String    `json:"activities"`
	Resources      null.String    `json:"resources"`
	Homework       null.String    `json:"homework"`
	Status         string         `json:"status"`
	CreatedAt      core.Timestamp `json:"createdAt"`
	UpdatedAt      core.Timestamp `json:"updatedAt"`
}

type Assessment struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      null.String    `json:"description"`
	SubjectID        null.String    `json:"subjectId"`
	AcademicPeriodID null.String    `json:"academicPeriodId"`
	Type             string         `json:"type"`
	Date             core.Timestamp `json:"date"`
	DueDate          core.Timestamp `json:"dueDate"`
	TotalPoints      null.Float64   `json:"totalPoints"`
	Weight           null.Float64   `json:"weight"`
	CreatedAt        core.Timestamp `json:"createdAt"`
	UpdatedAt        core.Timestamp `json:"updatedAt"`
}

// StudentAssessment is a student's grade on an Assessment.
type StudentAssessment struct {
	ID           string         `json:"id"`
	AssessmentID string         `json:"assessmentId"`
	StudentName  string         `json:"studentName"`
	Score        null.Float64   `json:"score"`
	Feedback     null.String    `json:"feedback"`
	SubmittedAt  core.Timestamp `json:"submittedAt"`
	CreatedAt    core.Timestamp `json:"createdAt"`
	UpdatedAt    core.Timestamp `json:"updatedAt"`
}

type Material struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  null.String    `json:"description"`
	Type         string         `json:"type"`
	URL          null.String    `json:"url"`
	SubjectID    null.String    `json:"subjectId"`
	LessonPlanID null.String    `json:"lessonPlanId"`
	CreatedAt    core.Timestamp `json:"createdAt"`
	UpdatedAt    core.Timestamp `json:"updatedAt"`
}
