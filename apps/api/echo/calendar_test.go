package echoapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/planner/core/calendar"
	"github.com/trezcool/planner/core/planning"
	"github.com/trezcool/planner/tests"
)

func Test_calendarAPI_assessmentLifecycle(t *testing.T) {
	app := setup(t)
	subj := testutil.CreateSubject(t, app.svcs, "Mathematics")

	rec := app.do(http.MethodPost, "/v1/assessments",
		[]byte(`{"title": "Midterm", "type": "exam", "date": "2024-04-15", "subjectId": "`+subj.ID+`"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := unmarshal[planning.Assessment](t, rec)

	events := app.listEvents(t, "/v1/calendar/events?sourceType=assessment")
	require.Len(t, events, 1)
	evt := events[0]
	assert.Equal(t, "Avaliação: Midterm", evt.Title)
	assert.Equal(t, "2024-04-15T00:00:00Z", evt.StartDate.String())
	assert.Equal(t, "2024-04-15T00:00:00Z", evt.EndDate.String())
	assert.True(t, evt.AllDay)
	assert.Equal(t, calendar.TypeExam, evt.Type)
	assert.Equal(t, calendar.ColorExam, evt.Color.String)
	assert.Equal(t, subj.ID, evt.SubjectID.String)
	assert.Equal(t, a.ID, evt.SourceID.String)
	assert.Equal(t, a.ID, evt.AssessmentID.String)

	t.Run("update refreshes the event", func(t *testing.T) {
		rec := app.do(http.MethodPatch, "/v1/assessments/"+a.ID, []byte(`{"title": "Final", "dueDate": "2024-04-20"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		events := app.listEvents(t, "/v1/calendar/events")
		require.Len(t, events, 1)
		assert.Equal(t, evt.ID, events[0].ID)
		assert.Equal(t, "Avaliação: Final", events[0].Title)
		assert.Equal(t, "2024-04-20T00:00:00Z", events[0].EndDate.String())
	})

	t.Run("derived events are read-only", func(t *testing.T) {
		managed := httpErr{Error: "event is managed by its source"}
		tests := []httpTest{
			{
				name: "patch", method: http.MethodPatch, path: "/v1/calendar/events/" + evt.ID, body: []byte(`{"title": "lol"}`),
				wantCode: http.StatusBadRequest, wantData: marshalObj(t, managed),
			},
			{
				name: "put", method: http.MethodPut, path: "/v1/calendar/events/" + evt.ID,
				body:     []byte(`{"title": "lol", "startDate": "2024-04-15"}`),
				wantCode: http.StatusBadRequest, wantData: marshalObj(t, managed),
			},
			{
				name: "delete", method: http.MethodDelete, path: "/v1/calendar/events/" + evt.ID,
				wantCode: http.StatusBadRequest, wantData: marshalObj(t, managed),
			},
		}
		app.runHTTPTests(t, tests)
	})

	t.Run("delete removes the event", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/v1/assessments/"+a.ID)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, app.listEvents(t, "/v1/calendar/events"))
	})
}

func Test_calendarAPI_lessonPlanSubject(t *testing.T) {
	app := setup(t)
	subj := testutil.CreateSubject(t, app.svcs, "Physics")
	tp := testutil.CreateTeachingPlan(t, app.svcs, "Mechanics", subj.ID, "2024-03-01", "2024-06-30")

	rec := app.do(http.MethodPost, "/v1/lesson-plans",
		[]byte(`{"title": "Newton", "teachingPlanId": "`+tp.ID+`", "date": "2024-03-04T10:00:00Z", "duration": 50}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lp := unmarshal[planning.LessonPlan](t, rec)
	assert.Equal(t, planning.LessonPlanned, lp.Status)

	events := app.listEvents(t, "/v1/calendar/events?sourceType=lesson_plan")
	require.Len(t, events, 1)
	assert.Equal(t, "Aula: Newton", events[0].Title)
	assert.Equal(t, "2024-03-04T10:50:00Z", events[0].EndDate.String())
	assert.Equal(t, subj.ID, events[0].SubjectID.String)
	assert.Equal(t, tp.ID, events[0].TeachingPlanID.String)

	t.Run("teaching plan subject change reaches its lessons", func(t *testing.T) {
		other := testutil.CreateSubject(t, app.svcs, "Chemistry")
		rec := app.do(http.MethodPatch, "/v1/teaching-plans/"+tp.ID, []byte(`{"subjectId": "`+other.ID+`"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		events := app.listEvents(t, "/v1/calendar/events?sourceType=lesson_plan")
		require.Len(t, events, 1)
		assert.Equal(t, other.ID, events[0].SubjectID.String)
	})
}

func Test_calendarAPI_manualEvents(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodPost, "/v1/calendar/events",
		[]byte(`{"title": "Staff meeting", "startDate": "2024-05-02T14:00:00Z", "type": "meeting", "sourceType": "assessment", "sourceId": "lol"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	evt := unmarshal[calendar.Event](t, rec)
	assert.Equal(t, calendar.SourceManual, evt.SourceType)
	assert.False(t, evt.SourceID.Valid)

	tests := []httpTest{
		{
			name: "end before start", method: http.MethodPost, path: "/v1/calendar/events",
			body:     []byte(`{"title": "Trip", "startDate": "2024-05-02", "endDate": "2024-05-01"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"endDate": "cannot be before the start date"}),
		},
		{
			name: "bad type", method: http.MethodPost, path: "/v1/calendar/events",
			body:     []byte(`{"title": "Trip", "startDate": "2024-05-02", "type": "party"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"type": "must be one of: class, exam, meeting, deadline, other"}),
		},
	}
	app.runHTTPTests(t, tests)

	rec = app.do(http.MethodPatch, "/v1/calendar/events/"+evt.ID, []byte(`{"location": "Room 12"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Room 12", unmarshal[calendar.Event](t, rec).Location.String)

	rec = app.do(http.MethodDelete, "/v1/calendar/events/"+evt.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_calendarAPI_range(t *testing.T) {
	app := setup(t)
	march := testutil.CreateAssessment(t, app.svcs, "March quiz", "", "2024-03-10")
	april := testutil.CreateAssessment(t, app.svcs, "April quiz", "", "2024-04-10")
	testutil.CreateAssessment(t, app.svcs, "May quiz", "", "2024-05-10")

	events := app.listEvents(t, "/v1/calendar/events?from=2024-03-01&to=2024-04-30&ordering=-startDate")
	require.Len(t, events, 2)
	assert.Equal(t, april.ID, events[0].SourceID.String)
	assert.Equal(t, march.ID, events[1].SourceID.String)
}

func Test_calendarAPI_rangeLastDay(t *testing.T) {
	app := setup(t)
	tp := testutil.CreateTeachingPlan(t, app.svcs, "Algebra", "", "2024-03-01", "2024-06-30")
	morning := testutil.CreateLessonPlan(t, app.svcs, "Morning", tp.ID, "2024-04-30T08:00:00Z")
	late := testutil.CreateLessonPlan(t, app.svcs, "Late", tp.ID, "2024-04-30T23:59:59Z")
	testutil.CreateLessonPlan(t, app.svcs, "Next day", tp.ID, "2024-05-01T00:00:00Z")

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "date bounds cover the whole day", path: "/v1/calendar/events?sourceType=lesson_plan&from=2024-04-30&to=2024-04-30", want: []string{morning.ID, late.ID}},
		{name: "date-time bound is exact", path: "/v1/calendar/events?sourceType=lesson_plan&from=2024-04-30&to=2024-04-30T08:00:00Z", want: []string{morning.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := app.listEvents(t, tt.path)
			ids := make([]string, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.SourceID.String)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	rec := app.do(http.MethodGet, "/v1/calendar/events.ics?from=2024-04-30&to=2024-04-30")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "BEGIN:VEVENT"))
	assert.Contains(t, rec.Body.String(), "SUMMARY:Aula: Morning")

	lessons := unmarshal[[]planning.LessonPlan](t, app.do(http.MethodGet, "/v1/lesson-plans?to=2024-04-30"))
	assert.Len(t, lessons, 2)
}

func Test_calendarAPI_exportICS(t *testing.T) {
	app := setup(t)
	a := testutil.CreateAssessment(t, app.svcs, "Midterm", "", "2024-04-15")
	testutil.CreateEvent(t, app.svcs, "Staff meeting", "2024-05-02T14:00:00Z")

	rec := app.do(http.MethodGet, "/v1/calendar/events.ics?to=2024-04-30")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))

	evt, err := app.svcs.Sync.FindBySource(ctx(), calendar.SourceAssessment, a.ID)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "UID:"+evt.ID+"@planner")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20240415")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20240416")
	assert.NotContains(t, body, "Staff meeting")
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
}

func (app *testApp) listEvents(t *testing.T, path string) []calendar.Event {
	t.Helper()
	rec := app.do(http.MethodGet, path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return unmarshal[[]calendar.Event](t, rec)
}
