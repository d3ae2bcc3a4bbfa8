package planning

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/planner/core"
)

// InitValidators registers the planning struct validations.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(
		periodStructValidation,
		NewAcademicPeriod{}, UpdateAcademicPeriod{},
		NewTeachingPlan{}, UpdateTeachingPlan{},
		NewAssessment{}, UpdateAssessment{},
	)
}

// periodStructValidation checks that a range does not end before it starts, when both bounds are set.
func periodStructValidation(sl validator.StructLevel) {
	var (
		start, end     core.Timestamp
		endFld, endTag string
	)
	switch p := sl.Current().Interface().(type) {
	case NewAcademicPeriod:
		start, end, endFld, endTag = p.StartDate, p.EndDate, "endDate", "EndDate"
	case UpdateAcademicPeriod:
		start, end, endFld, endTag = deref(p.StartDate), deref(p.EndDate), "endDate", "EndDate"
	case NewTeachingPlan:
		start, end, endFld, endTag = p.StartDate, p.EndDate, "endDate", "EndDate"
	case UpdateTeachingPlan:
		start, end, endFld, endTag = deref(p.StartDate), deref(p.EndDate), "endDate", "EndDate"
	case NewAssessment:
		start, end, endFld, endTag = p.Date, p.DueDate, "dueDate", "DueDate"
	case UpdateAssessment:
		start, end, endFld, endTag = deref(p.Date), deref(p.DueDate), "dueDate", "DueDate"
	default:
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		sl.ReportError(end, endFld, endTag, core.EndBeforeStartTag, "")
	}
}

func deref(ts *core.Timestamp) core.Timestamp {
	if ts == nil {
		return core.Timestamp{}
	}
	return *ts
}
