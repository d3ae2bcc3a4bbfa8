package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/planner/apps/api/echo"
	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/planner"
	"github.com/trezcool/planner/core/record"
	"github.com/trezcool/planner/tests"
)

const testSecret = "t3st-s3cr3t"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	Server
	svcs   *planner.Services
	logger *testutil.Logger
	token  string
}

type appOptions struct {
	locale string
	store  func(core.EntityStore) core.EntityStore
}

func setup(t *testing.T, opts ...appOptions) *testApp {
	var opt appOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.locale == "" {
		opt.locale = "en"
	}

	logger := new(testutil.Logger)
	store, _ := testutil.NewDummyStore(t)
	if opt.store != nil {
		store = opt.store(store)
	}
	svcs := planner.NewServices(store, logger)
	validate, translator := testutil.NewValidator(t, opt.locale)

	return &testApp{
		Server: NewServer(
			&Options{
				AppName:        "Planner",
				DisableReqLogs: true,
				TestMode:       true,
				JWTSecret:      testSecret,
				Services:       svcs,
				Validate:       validate,
				Translator:     translator,
				Logger:         logger,
			},
		),
		svcs:   svcs,
		logger: logger,
		token:  getToken(t),
	}
}

// do sends an authenticated request and returns the recorder.
func (app *testApp) do(method, path string, body ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, app.token, body...)
	app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T) string {
	claims := NewClaims(core.Principal{ID: "1", Username: "prof", Email: "prof@school.br"}, "Planner", time.Hour)
	token, err := GenerateToken(claims, testSecret)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshalList() failed: %v", err)
	}
	return data
}

func unmarshal[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
	return v
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func (app *testApp) runHTTPTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.token
			if token == "" {
				token = app.token
			}
			if token == "-" { // unauthenticated
				token = ""
			}
			req, rec := newAuthRequest(tt.method, tt.path, token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// failingStore fails every write.
type failingStore struct {
	core.EntityStore
}

var errStoreDown = core.NewStoreError("create", core.Subjects, assert.AnError)

func (failingStore) Create(context.Context, core.Collection, record.Record) (record.Record, error) {
	return nil, errStoreDown
}

func (failingStore) Update(context.Context, core.Collection, string, record.Record) (record.Record, error) {
	return nil, errStoreDown
}

func ctx() context.Context {
	return context.Background()
}

func strPtr(s string) *string {
	return &s
}
