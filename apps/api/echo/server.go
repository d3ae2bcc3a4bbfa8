package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/planner"
	"github.com/trezcool/planner/core/planning"
)

type (
	Options struct {
		AppName        string
		Address        string
		DisableReqLogs bool
		Debug          bool
		TestMode       bool
		JWTSecret      string
		Services       *planner.Services
		Validate       *validator.Validate
		Translator     ut.Translator
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1", middleware.JWTWithConfig(newJWTConfig(s.opts.JWTSecret)))
	svcs, validate := s.opts.Services, s.opts.Validate

	registerResource[planning.AcademicPeriod, planning.NewAcademicPeriod, planning.UpdateAcademicPeriod](
		v1, "/academic-periods", svcs.AcademicPeriods, validate, "year", "isCurrent")
	registerResource[planning.Subject, planning.NewSubject, planning.UpdateSubject](
		v1, "/subjects", svcs.Subjects, validate, "code")
	registerResource[planning.AnnualPlan, planning.NewAnnualPlan, planning.UpdateAnnualPlan](
		v1, "/annual-plans", svcs.AnnualPlans, validate, "subjectId", "academicPeriodId", "year")
	registerResource[planning.TeachingPlan, planning.NewTeachingPlan, planning.UpdateTeachingPlan](
		v1, "/teaching-plans", svcs.TeachingPlans, validate, "subjectId", "annualPlanId")
	registerResource[planning.LessonPlan, planning.NewLessonPlan, planning.UpdateLessonPlan](
		v1, "/lesson-plans", svcs.LessonPlans, validate, "teachingPlanId", "status")
	registerResource[planning.Assessment, planning.NewAssessment, planning.UpdateAssessment](
		v1, "/assessments", svcs.Assessments, validate, "subjectId", "academicPeriodId", "type")
	registerResource[planning.StudentAssessment, planning.NewStudentAssessment, planning.UpdateStudentAssessment](
		v1, "/student-assessments", svcs.StudentAssessments, validate, "assessmentId")
	registerResource[planning.Material, planning.NewMaterial, planning.UpdateMaterial](
		v1, "/materials", svcs.Materials, validate, "subjectId", "lessonPlanId", "type")

	registerCalendarAPI(v1, s.opts.AppName, svcs.Events, validate)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"app":  s.opts.AppName,
		"time": time.Now().UTC().Format(core.TimestampLayout),
	})
}
