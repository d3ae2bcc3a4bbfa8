// Package planner assembles the entity services of the planner and keeps the calendar in sync with them.
package planner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/calendar"
	"github.com/trezcool/planner/core/crud"
	"github.com/trezcool/planner/core/planning"
)

// ErrManagedEvent is returned when changing an event mirrored from a planning entity through the calendar.
var ErrManagedEvent = errors.New("event is managed by its source")

type Services struct {
	AcademicPeriods    *crud.Service[planning.AcademicPeriod]
	Subjects           *crud.Service[planning.Subject]
	AnnualPlans        *crud.Service[planning.AnnualPlan]
	TeachingPlans      *crud.Service[planning.TeachingPlan]
	LessonPlans        *crud.Service[planning.LessonPlan]
	Assessments        *crud.Service[planning.Assessment]
	StudentAssessments *crud.Service[planning.StudentAssessment]
	Materials          *crud.Service[planning.Material]
	Events             *crud.Service[calendar.Event]

	Sync *calendar.Synchronizer
}

func NewServices(store core.EntityStore, logger core.Logger) *Services {
	sync := calendar.NewSynchronizer(store, logger)
	svcs := &Services{Sync: sync}

	svcs.AcademicPeriods = crud.NewService[planning.AcademicPeriod](store, core.AcademicPeriods, core.EntityAcademicPeriod)
	svcs.Subjects = crud.NewService[planning.Subject](
		store, core.Subjects, core.EntitySubject,
		crud.AfterDelete(func(ctx context.Context, subj planning.Subject) {
			// the store has cleared the subject from its owners by now
			sync.RefreshReferencing(ctx, "subject_id", subj.ID)
		}),
	)
	svcs.AnnualPlans = crud.NewService[planning.AnnualPlan](store, core.AnnualPlans, core.EntityAnnualPlan)
	svcs.StudentAssessments = crud.NewService[planning.StudentAssessment](store, core.StudentAssessments, core.EntityStudentAssessment)
	svcs.Materials = crud.NewService[planning.Material](store, core.Materials, core.EntityMaterial)

	svcs.Assessments = crud.NewService[planning.Assessment](
		store, core.Assessments, core.EntityAssessment,
		crud.AfterSave(func(ctx context.Context, a planning.Assessment) {
			sync.SyncFrom(ctx, calendar.FromAssessment(a))
		}),
		crud.AfterDelete(func(ctx context.Context, a planning.Assessment) {
			sync.DeleteBySource(ctx, calendar.SourceAssessment, a.ID)
		}),
	)

	svcs.LessonPlans = crud.NewService[planning.LessonPlan](
		store, core.LessonPlans, core.EntityLessonPlan,
		crud.AfterSave(func(ctx context.Context, lp planning.LessonPlan) {
			sync.SyncFrom(ctx, calendar.FromLessonPlan(lp))
		}),
		crud.AfterDelete(func(ctx context.Context, lp planning.LessonPlan) {
			sync.DeleteBySource(ctx, calendar.SourceLessonPlan, lp.ID)
		}),
	)

	svcs.TeachingPlans = crud.NewService[planning.TeachingPlan](
		store, core.TeachingPlans, core.EntityTeachingPlan,
		crud.AfterSave(func(ctx context.Context, tp planning.TeachingPlan) {
			sync.SyncFrom(ctx, calendar.FromTeachingPlan(tp))
			// lesson plan events carry their teaching plan's subject
			svcs.resyncLessons(ctx, tp, logger)
		}),
		crud.AfterDelete(func(ctx context.Context, tp planning.TeachingPlan) {
			sync.DeleteBySource(ctx, calendar.SourceTeachingPlan, tp.ID)
			sync.RefreshReferencing(ctx, "teaching_plan_id", tp.ID)
		}),
	)

	svcs.Events = crud.NewService[calendar.Event](
		store, core.CalendarEvents, core.EntityCalendarEvent,
		crud.Guard(func(_ context.Context, evt calendar.Event) error {
			if !evt.IsManual() {
				return core.NewValidationError(ErrManagedEvent)
			}
			return nil
		}),
	)
	return svcs
}

func (svcs *Services) resyncLessons(ctx context.Context, tp planning.TeachingPlan, logger core.Logger) {
	lessons, err := svcs.LessonPlans.List(ctx, core.Where(core.Eq("teaching_plan_id", tp.ID)))
	if err != nil {
		logger.Error("listing lesson plans to resync", err, map[string]interface{}{"teachingPlanId": tp.ID})
		return
	}
	for _, lp := range lessons {
		svcs.Sync.SyncFrom(ctx, calendar.FromLessonPlan(lp, tp))
	}
}
