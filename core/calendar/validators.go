package calendar

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/planner/core"
)

// InitValidators registers the calendar event struct validations.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(eventStructValidation, NewEvent{}, UpdateEvent{})
}

func eventStructValidation(sl validator.StructLevel) {
	var start, end core.Timestamp
	switch e := sl.Current().Interface().(type) {
	case NewEvent:
		start, end = e.StartDate, e.EndDate
	case UpdateEvent:
		if e.StartDate == nil || e.EndDate == nil {
			return
		}
		start, end = *e.StartDate, *e.EndDate
	default:
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		sl.ReportError(end, "endDate", "EndDate", core.EndBeforeStartTag, "")
	}
}
