package calendar

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//Planner//Calendar//PT"

// WriteICS serializes events as an iCalendar (RFC 5545) document. All-day events are written with
// DATE values; their exclusive end is the day after their last day.
func WriteICS(w io.Writer, name string, events []Event) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	stamp := time.Now().UTC()
	for _, evt := range events {
		ve := cal.AddEvent(evt.ID + "@planner")
		ve.SetDtStampTime(stamp)
		if !evt.CreatedAt.IsZero() {
			ve.SetCreatedTime(evt.CreatedAt.Time)
		}
		ve.SetSummary(evt.Title)
		if evt.Description.Valid {
			ve.SetDescription(evt.Description.String)
		}
		if evt.Location.Valid {
			ve.SetLocation(evt.Location.String)
		}
		if evt.Color.Valid {
			ve.SetProperty(ical.ComponentProperty("COLOR"), evt.Color.String)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, string(evt.Type))

		if evt.AllDay {
			ve.SetAllDayStartAt(evt.StartDate.Time)
			last := evt.StartDate.Time
			if !evt.EndDate.IsZero() && evt.EndDate.After(last) {
				last = evt.EndDate.Time
			}
			ve.SetAllDayEndAt(last.AddDate(0, 0, 1))
			continue
		}
		ve.SetStartAt(evt.StartDate.Time)
		if !evt.EndDate.IsZero() {
			ve.SetEndAt(evt.EndDate.Time)
		}
	}
	return cal.SerializeTo(w)
}
