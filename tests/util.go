// Package testutil holds the helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/calendar"
	"github.com/trezcool/planner/core/planner"
	"github.com/trezcool/planner/core/planning"
	"github.com/trezcool/planner/storage/database"
	dummydb "github.com/trezcool/planner/storage/database/dummy"
)

// PrepareDB returns a migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := &core.Config{Database: core.DatabaseConfig{Engine: database.EngineSQLite, Path: ":memory:"}}

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewDummyStore returns an empty in-memory store and its DB.
func NewDummyStore(t *testing.T) (core.EntityStore, *dummydb.DB) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("NewDummyStore() failed: %v", err)
	}
	return dummydb.NewStore(db), db
}

// NewServices returns the planner services over an in-memory store, logging to logger.
func NewServices(t *testing.T, logger core.Logger) (*planner.Services, core.EntityStore) {
	t.Helper()
	store, _ := NewDummyStore(t)
	return planner.NewServices(store, logger), store
}

// NewValidator returns a validator set up like the API's, with its translator.
func NewValidator(t *testing.T, locale string) (*validator.Validate, ut.Translator) {
	t.Helper()
	translator, err := core.NewTranslator(locale)
	if err != nil {
		t.Fatalf("NewValidator() failed: %v", err)
	}
	validate := validator.New()
	core.InitValidators(validate, translator)
	planning.InitValidators(validate)
	calendar.InitValidators(validate)
	return validate, translator
}

func CreateSubject(t *testing.T, svcs *planner.Services, name string) planning.Subject {
	t.Helper()
	subj, err := svcs.Subjects.Create(context.Background(), planning.NewSubject{Name: name})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateTeachingPlan(t *testing.T, svcs *planner.Services, title, subjectID, start, end string) planning.TeachingPlan {
	t.Helper()
	data := planning.NewTeachingPlan{
		Title:     title,
		SubjectID: nullString(subjectID),
		StartDate: core.MustTimestamp(start),
	}
	if end != "" {
		data.EndDate = core.MustTimestamp(end)
	}
	tp, err := svcs.TeachingPlans.Create(context.Background(), data)
	if err != nil {
		t.Fatalf("CreateTeachingPlan() failed: %v", err)
	}
	return tp
}

func CreateLessonPlan(t *testing.T, svcs *planner.Services, title, teachingPlanID, date string) planning.LessonPlan {
	t.Helper()
	lp, err := svcs.LessonPlans.Create(context.Background(), planning.NewLessonPlan{
		Title:          title,
		TeachingPlanID: nullString(teachingPlanID),
		Date:           core.MustTimestamp(date),
		Duration:       50,
		Status:         planning.LessonPlanned,
	})
	if err != nil {
		t.Fatalf("CreateLessonPlan() failed: %v", err)
	}
	return lp
}

func CreateAssessment(t *testing.T, svcs *planner.Services, title, subjectID, date string) planning.Assessment {
	t.Helper()
	a, err := svcs.Assessments.Create(context.Background(), planning.NewAssessment{
		Title:     title,
		SubjectID: nullString(subjectID),
		Type:      planning.AssessmentExam,
		Date:      core.MustTimestamp(date),
	})
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	return a
}

func CreateEvent(t *testing.T, svcs *planner.Services, title, start string) calendar.Event {
	t.Helper()
	evt, err := svcs.Events.Create(context.Background(), calendar.NewEvent{
		Title:      title,
		StartDate:  core.MustTimestamp(start),
		Type:       calendar.TypeMeeting,
		SourceType: calendar.SourceManual,
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

// LogEntry is a message recorded by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger recording what it is given.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

// Entries returns the recorded entries of level, or all of them when level is empty.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func (l *Logger) String() string {
	return fmt.Sprintf("%+v", l.Entries(""))
}
