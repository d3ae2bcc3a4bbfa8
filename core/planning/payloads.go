package planning

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/planner/core"
)

// New* payloads carry every writable field: they are used to create a record and to replace one.
// Update* payloads only carry the fields to change (nil pointers are left untouched).

type NewAcademicPeriod struct {
	Name      string         `json:"name" validate:"required,notblank,max=120"`
	Year      int            `json:"year" validate:"required,min=1900,max=2200"`
	StartDate core.Timestamp `json:"startDate" validate:"required"`
	EndDate   core.Timestamp `json:"endDate" validate:"required"`
	IsCurrent bool           `json:"isCurrent"`
}

func (p *NewAcademicPeriod) Clean() {
	p.Name = core.CleanString(p.Name)
}

type UpdateAcademicPeriod struct {
	Name      *string         `json:"name,omitempty" validate:"omitempty,notblank,max=120"`
	Year      *int            `json:"year,omitempty" validate:"omitempty,min=1900,max=2200"`
	StartDate *core.Timestamp `json:"startDate,omitempty"`
	EndDate   *core.Timestamp `json:"endDate,omitempty"`
	IsCurrent *bool           `json:"isCurrent,omitempty"`
}

func (p *UpdateAcademicPeriod) Clean() {
	cleanPtr(p.Name)
}

type NewSubject struct {
	Name        string      `json:"name" validate:"required,notblank,max=120"`
	Code        null.String `json:"code" validate:"omitempty,max=20"`
	Description null.String `json:"description"`
	Color       null.String `json:"color" validate:"omitempty,hexcolor"`
	Workload    null.Int    `json:"workload" validate:"omitempty,min=0"`
}

func (p *NewSubject) Clean() {
	p.Name = core.CleanString(p.Name)
	cleanNull(&p.Code, &p.Description, &p.Color)
}

type UpdateSubject struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=120"`
	Code        *string `json:"code,omitempty" validate:"omitempty,max=20"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Workload    *int    `json:"workload,omitempty" validate:"omitempty,min=0"`
}

func (p *UpdateSubject) Clean() {
	cleanPtr(p.Name, p.Code, p.Description, p.Color)
}

type NewAnnualPlan struct {
	Title            string      `json:"title" validate:"required,notblank,max=200"`
	SubjectID        null.String `json:"subjectId"`
	AcademicPeriodID null.String `json:"academicPeriodId"`
	Year             int         `json:"year" validate:"required,min=1900,max=2200"`
	Grade            null.String `json:"grade" validate:"omitempty,max=60"`
	Objectives       null.String `json:"objectives"`
	Methodology      null.String `json:"methodology"`
	Evaluation       null.String `json:"evaluation"`
}

func (p *NewAnnualPlan) Clean() {
	p.Title = core.CleanString(p.Title)
	cleanNull(&p.SubjectID, &p.AcademicPeriodID, &p.Grade)
}

type UpdateAnnualPlan struct {
	Title            *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	SubjectID        *string `json:"subjectId,omitempty"`
	AcademicPeriodID *string `json:"academicPeriodId,omitempty"`
	Year             *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2200"`
	Grade            *string `json:"grade,omitempty" validate:"omitempty,max=60"`
	Objectives       *string `json:"objectives,omitempty"`
	Methodology      *string `json:"methodology,omitempty"`
	Evaluation       *string `json:"evaluation,omitempty"`
}

func (p *UpdateAnnualPlan) Clean() {
	cleanPtr(p.Title, p.SubjectID, p.AcademicPeriodID, p.Grade)
}

type NewTeachingPlan struct {
	Title        string         `json:"title" validate:"required,notblank,max=200"`
	SubjectID    null.String    `json:"subjectId"`
	AnnualPlanID null.String    `json:"annualPlanId"`
	StartDate    core.Timestamp `json:"startDate" validate:"required"`
	EndDate      core.Timestamp `json:"endDate"`
	Objectives   null.String    `json:"objectives"`
	Content      null.String    `json:"content"`
	Methodology  null.String    `json:"methodology"`
	Resources    null.String    `json:"resources"`
	Evaluation   null.String    `json:"evaluation"`
}

func (p *NewTeachingPlan) Clean() {
	p.Title = core.CleanString(p.Title)
	cleanNull(&p.SubjectID, &p.AnnualPlanID)
}

type UpdateTeachingPlan struct {
	Title        *string         `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	SubjectID    *string         `json:"subjectId,omitempty"`
	AnnualPlanID *string         `json:"annualPlanId,omitempty"`
	StartDate    *core.Timestamp `json:"startDate,omitempty"`
	EndDate      *core.Timestamp `json:"endDate,omitempty"`
	Objectives   *string         `json:"objectives,omitempty"`
	Content      *string         `json:"content,omitempty"`
	Methodology  *string         `json:"methodology,omitempty"`
	Resources    *string         `json:"resources,omitempty"`
	Evaluation   *string         `json:"evaluation,omitempty"`
}

func (p *UpdateTeachingPlan) Clean() {
	cleanPtr(p.Title, p.SubjectID, p.AnnualPlanID)
}

type NewLessonPlan struct {
	Title          string         `json:"title" validate:"required,notblank,max=200"`
	TeachingPlanID null.String    `json:"teachingPlanId"`
	Date           core.Timestamp `json:"date" validate:"required"`
	Duration       int            `json:"duration" validate:"required,min=1,max=1440"`
	Objectives     null.String    `json:"objectives"`
	Content        null.String    `json:"content"`
	Activities     null.String    `json:"activities"`
	Resources      null.String    `json:"resources"`
	Homework       null.String    `json:"homework"`
	Status         string         `json:"status" validate:"oneof=planned taught cancelled"`
}

func (p *NewLessonPlan) Clean() {
	p.Title = core.CleanString(p.Title)
	p.Status = core.CleanString(p.Status, true /* lower */)
	if p.Status == "" {
		p.Status = LessonPlanned
	}
	cleanNull(&p.TeachingPlanID)
}

type UpdateLessonPlan struct {
	Title          *string         `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	TeachingPlanID *string         `json:"teachingPlanId,omitempty"`
	Date           *core.Timestamp `json:"date,omitempty"`
	Duration       *int            `json:"duration,omitempty" validate:"omitempty,min=1,max=1440"`
	Objectives     *string         `json:"objectives,omitempty"`
	Content        *string         `json:"content,omitempty"`
	Activities     *string         `json:"activities,omitempty"`
	Resources      *string         `json:"resources,omitempty"`
	Homework       *string         `json:"homework,omitempty"`
	Status         *string         `json:"status,omitempty" validate:"omitempty,oneof=planned taught cancelled"`
}

func (p *UpdateLessonPlan) Clean() {
	cleanPtr(p.Title, p.TeachingPlanID)
	if p.Status != nil {
		*p.Status = core.CleanString(*p.Status, true /* lower */)
	}
}

type NewAssessment struct {
	Title            string         `json:"title" validate:"required,notblank,max=200"`
	Description      null.String    `json:"description"`
	SubjectID        null.String    `json:"subjectId"`
	AcademicPeriodID null.String    `json:"academicPeriodId"`
	Type             string         `json:"type" validate:"oneof=exam quiz assignment project presentation other"`
	Date             core.Timestamp `json:"date" validate:"required"`
	DueDate          core.Timestamp `json:"dueDate"`
	TotalPoints      null.Float64   `json:"totalPoints" validate:"omitempty,min=0"`
	Weight           null.Float64   `json:"weight" validate:"omitempty,min=0"`
}

func (p *NewAssessment) Clean() {
	p.Title = core.CleanString(p.Title)
	p.Type = core.CleanString(p.Type, true /* lower */)
	if p.Type == "" {
		p.Type = AssessmentExam
	}
	cleanNull(&p.Description, &p.SubjectID, &p.AcademicPeriodID)
}

type UpdateAssessment struct {
	Title            *string         `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description      *string         `json:"description,omitempty"`
	SubjectID        *string         `json:"subjectId,omitempty"`
	AcademicPeriodID *string         `json:"academicPeriodId,omitempty"`
	Type             *string         `json:"type,omitempty" validate:"omitempty,oneof=exam quiz assignment project presentation other"`
	Date             *core.Timestamp `json:"date,omitempty"`
	DueDate          *core.Timestamp `json:"dueDate,omitempty"`
	TotalPoints      *float64        `json:"totalPoints,omitempty" validate:"omitempty,min=0"`
	Weight           *float64        `json:"weight,omitempty" validate:"omitempty,min=0"`
}

func (p *UpdateAssessment) Clean() {
	cleanPtr(p.Title, p.Description, p.SubjectID, p.AcademicPeriodID)
	if p.Type != nil {
		*p.Type = core.CleanString(*p.Type, true /* lower */)
	}
}

type NewStudentAssessment struct {
	AssessmentID string         `json:"assessmentId" validate:"required,notblank"`
	StudentName  string         `json:"studentName" validate:"required,notblank,max=200"`
	Score        null.Float64   `json:"score" validate:"omitempty,min=0"`
	Feedback     null.String    `json:"feedback"`
	SubmittedAt  core.Timestamp `json:"submittedAt"`
}

func (p *NewStudentAssessment) Clean() {
	p.AssessmentID = core.CleanString(p.AssessmentID)
	p.StudentName = core.CleanString(p.StudentName)
	cleanNull(&p.Feedback)
}

type UpdateStudentAssessment struct {
	StudentName *string         `json:"studentName,omitempty" validate:"omitempty,notblank,max=200"`
	Score       *float64        `json:"score,omitempty" validate:"omitempty,min=0"`
	Feedback    *string         `json:"feedback,omitempty"`
	SubmittedAt *core.Timestamp `json:"submittedAt,omitempty"`
}

func (p *UpdateStudentAssessment) Clean() {
	cleanPtr(p.StudentName, p.Feedback)
}

type NewMaterial struct {
	Title        string      `json:"title" validate:"required,notblank,max=200"`
	Description  null.String `json:"description"`
	Type         string      `json:"type" validate:"oneof=document link video other"`
	URL          null.String `json:"url" validate:"omitempty,url"`
	SubjectID    null.String `json:"subjectId"`
	LessonPlanID null.String `json:"lessonPlanId"`
}

func (p *NewMaterial) Clean() {
	p.Title = core.CleanString(p.Title)
	p.Type = core.CleanString(p.Type, true /* lower */)
	if p.Type == "" {
		p.Type = MaterialDocument
	}
	cleanNull(&p.Description, &p.URL, &p.SubjectID, &p.LessonPlanID)
}

type UpdateMaterial struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description  *string `json:"description,omitempty"`
	Type         *string `json:"type,omitempty" validate:"omitempty,oneof=document link video other"`
	URL          *string `json:"url,omitempty" validate:"omitempty,url"`
	SubjectID    *string `json:"subjectId,omitempty"`
	LessonPlanID *string `json:"lessonPlanId,omitempty"`
}

func (p *UpdateMaterial) Clean() {
	cleanPtr(p.Title, p.Description, p.URL, p.SubjectID, p.LessonPlanID)
	if p.Type != nil {
		*p.Type = core.CleanString(*p.Type, true /* lower */)
	}
}

func cleanPtr(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
}

// cleanNull trims valid strings and invalidates the blank ones.
func cleanNull(ss ...*null.String) {
	for _, s := range ss {
		if !s.Valid {
			continue
		}
		if v := core.CleanString(s.String); v != "" {
			*s = null.StringFrom(v)
		} else {
			*s = null.String{}
		}
	}
}
