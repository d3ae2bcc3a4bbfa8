package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/planning"
	"github.com/trezcool/planner/tests"
)

func Test_server_home(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Planner", unmarshal[map[string]interface{}](t, rec)["app"])
}

func Test_resourceAPI_auth(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{name: "token required", path: "/v1/subjects", token: "-", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "invalid token", path: "/v1/subjects", token: "lol", wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{name: "valid token", path: "/v1/subjects", wantCode: http.StatusOK, wantData: marshalList(t)},
	}
	app.runHTTPTests(t, tests)
}

func Test_resourceAPI_subjects(t *testing.T) {
	app := setup(t)

	math := testutil.CreateSubject(t, app.svcs, "Mathematics")
	bio := testutil.CreateSubject(t, app.svcs, "Biology")
	_, err := app.svcs.Subjects.Update(ctx(), math.ID, planning.UpdateSubject{Code: strPtr("MAT")})
	require.NoError(t, err)
	math, err = app.svcs.Subjects.Get(ctx(), math.ID)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "list (ordered by name)", path: "/v1/subjects", wantCode: http.StatusOK, wantData: marshalList(t, bio, math)},
		{name: "list ordering=-name", path: "/v1/subjects?ordering=-name", wantCode: http.StatusOK, wantData: marshalList(t, math, bio)},
		{name: "list code=MAT", path: "/v1/subjects?code=MAT", wantCode: http.StatusOK, wantData: marshalList(t, math)},
		{name: "list code=lol", path: "/v1/subjects?code=lol", wantCode: http.StatusOK, wantData: marshalList(t)},
		{
			name: "list unknown ordering", path: "/v1/subjects?ordering=lol", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"ordering": "unknown field: lol"}),
		},
		{name: "retrieve", path: "/v1/subjects/" + bio.ID, wantCode: http.StatusOK, wantData: marshalObj(t, bio)},
		{name: "retrieve unknown", path: "/v1/subjects/lol", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "not found"})},
		{
			name: "create blank name", method: http.MethodPost, path: "/v1/subjects", body: []byte(`{"name": "   "}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "create bad color", method: http.MethodPost, path: "/v1/subjects", body: []byte(`{"name": "Art", "color": "blue"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"color": "must be a hex color, e.g. #3b82f6"}),
		},
		{name: "delete unknown", method: http.MethodDelete, path: "/v1/subjects/lol", wantCode: http.StatusNotFound},
	}
	app.runHTTPTests(t, tests)

	t.Run("create, update, replace & delete", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/subjects", []byte(`{"name": " History ", "description": "wars", "color": "#aabbcc"}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		hist := unmarshal[planning.Subject](t, rec)
		assert.NotEmpty(t, hist.ID)
		assert.Equal(t, "History", hist.Name)
		assert.Equal(t, "wars", hist.Description.String)
		assert.False(t, hist.CreatedAt.IsZero())

		rec = app.do(http.MethodPatch, "/v1/subjects/"+hist.ID, []byte(`{"workload": 80}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		hist = unmarshal[planning.Subject](t, rec)
		assert.Equal(t, 80, hist.Workload.Int)
		assert.Equal(t, "wars", hist.Description.String, "absent fields are kept")

		rec = app.do(http.MethodPut, "/v1/subjects/"+hist.ID, []byte(`{"name": "World History"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		hist = unmarshal[planning.Subject](t, rec)
		assert.Equal(t, "World History", hist.Name)
		assert.False(t, hist.Description.Valid, "absent fields are cleared")
		assert.False(t, hist.Workload.Valid)

		rec = app.do(http.MethodDelete, "/v1/subjects/"+hist.ID)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.do(http.MethodGet, "/v1/subjects/"+hist.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_resourceAPI_validation(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name: "teaching plan ends before it starts", method: http.MethodPost, path: "/v1/teaching-plans",
			body:     []byte(`{"title": "Algebra", "startDate": "2024-06-01", "endDate": "2024-03-01"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"endDate": "cannot be before the start date"}),
		},
		{
			name: "assessment due before its date", method: http.MethodPatch, path: "/v1/assessments/lol",
			body:     []byte(`{"date": "2024-06-01", "dueDate": "2024-05-01"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"dueDate": "cannot be before the start date"}),
		},
		{
			name: "lesson plan bad status", method: http.MethodPost, path: "/v1/lesson-plans",
			body:     []byte(`{"title": "Intro", "date": "2024-03-04T10:00:00Z", "duration": 50, "status": "lol"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"status": "must be one of: planned, taught, cancelled"}),
		},
		{
			name: "bad date", method: http.MethodPost, path: "/v1/assessments",
			body: []byte(`{"title": "Quiz", "date": "lol"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "bad range filter", path: "/v1/assessments?from=lol",
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"date": "invalid value"}),
		},
		{
			name: "bad range filter on a compound column", path: "/v1/teaching-plans?to=lol",
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"startDate": "invalid value"}),
		},
		{
			name: "unknown compound ordering", path: "/v1/lesson-plans?ordering=-teachingPlanIdx",
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"ordering": "unknown field: teachingPlanIdx"}),
		},
	}
	app.runHTTPTests(t, tests)
}

func Test_resourceAPI_localization(t *testing.T) {
	app := setup(t, appOptions{locale: "pt_BR"})

	tests := []httpTest{
		{
			name: "required", method: http.MethodPost, path: "/v1/assessments", body: []byte(`{"date": "2024-04-15"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"title": "este campo é obrigatório"}),
		},
	}
	app.runHTTPTests(t, tests)
}

func Test_resourceAPI_storeFailure(t *testing.T) {
	wrap := func(store core.EntityStore) core.EntityStore { return failingStore{store} }

	tests := []struct {
		locale string
		want   string
	}{
		{locale: "en", want: "error creating subject"},
		{locale: "pt_BR", want: "erro ao criar disciplina"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			app := setup(t, appOptions{locale: tt.locale, store: wrap})

			rec := app.do(http.MethodPost, "/v1/subjects", []byte(`{"name": "Art"}`))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, httpErr{Error: tt.want}, unmarshal[httpErr](t, rec))
			assert.NotContains(t, rec.Body.String(), assert.AnError.Error())

			if entries := app.logger.Entries("ERROR"); assert.Len(t, entries, 1) {
				assert.Contains(t, entries[0].Args, core.Principal{ID: "1", Username: "prof", Email: "prof@school.br"})
			}
		})
	}
}
