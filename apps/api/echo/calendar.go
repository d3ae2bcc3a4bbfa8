package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/planner/core/calendar"
	"github.com/trezcool/planner/core/crud"
)

const icsContentType = "text/calendar; charset=utf-8"

type calendarAPI struct {
	name string
	svc  *crud.Service[calendar.Event]
}

func registerCalendarAPI(g *echo.Group, name string, svc *crud.Service[calendar.Event], validate *validator.Validate) {
	api := calendarAPI{name: name, svc: svc}

	g.GET("/calendar/events.ics", api.exportICS)
	registerResource[calendar.Event, calendar.NewEvent, calendar.UpdateEvent](
		g, "/calendar/events", svc, validate, "type", "sourceType", "sourceId", "subjectId")
}

// exportICS serves the events in the from/to range as an iCalendar feed.
func (api calendarAPI) exportICS(ctx echo.Context) error {
	events, err := api.svc.List(ctx.Request().Context(), listQuery(ctx, api.svc.Schema(), []string{"type", "subjectId"}))
	if err != nil {
		return errors.Wrap(err, "listing calendar events")
	}

	var buf bytes.Buffer
	if err = calendar.WriteICS(&buf, api.name, events); err != nil {
		return errors.Wrap(err, "writing iCalendar")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.ics"`)
	return ctx.Blob(http.StatusOK, icsContentType, buf.Bytes())
}
