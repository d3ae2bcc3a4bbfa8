package calendar

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/planning"
	"github.com/trezcool/planner/core/record"
)

// Synchronizer mirrors planning entities into calendar events, keeping at most one event per
// (source_type, source_id) whose derived fields match its source.
type Synchronizer struct {
	store  core.EntityStore
	logger core.Logger
}

func NewSynchronizer(store core.EntityStore, logger core.Logger) *Synchronizer {
	return &Synchronizer{store: store, logger: logger}
}

// SyncFrom creates or refreshes the event mirroring src. Failures are logged, never returned:
// the source entity write it follows has already succeeded.
func (s *Synchronizer) SyncFrom(ctx context.Context, src Source) {
	if err := s.Sync(ctx, src); err != nil {
		st, id := src.Ref()
		s.logger.Error("syncing calendar event", err, logFields(st, id))
	}
}

// DeleteBySource removes the event mirroring (st, id), if any. Failures are logged, never returned.
func (s *Synchronizer) DeleteBySource(ctx context.Context, st SourceType, id string) {
	if err := s.Unsync(ctx, st, id); err != nil {
		s.logger.Error("deleting calendar event", err, logFields(st, id))
	}
}

// Sync is SyncFrom, returning the error. A source missing required data is skipped without error.
func (s *Synchronizer) Sync(ctx context.Context, src Source) error {
	src = s.resolve(ctx, src)

	d, ok := Derive(src)
	if !ok {
		st, id := src.Ref()
		s.logger.Debug("calendar sync skipped: source lacks required data", logFields(st, id))
		return nil
	}
	return s.write(ctx, d)
}

// write stores d as the single event of its source.
func (s *Synchronizer) write(ctx context.Context, d Derived) error {
	rec := d.Record()

	if upserter, ok := s.store.(core.SourceUpserter); ok {
		_, err := upserter.UpsertBySource(ctx, rec)
		return errors.Wrap(err, "upserting calendar event")
	}

	existing, err := s.findBySource(ctx, d.SourceType, d.SourceID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		_, err = s.store.Create(ctx, core.CalendarEvents, rec)
		return errors.Wrap(err, "creating calendar event")
	}

	if _, err = s.store.Update(ctx, core.CalendarEvents, existing[0].ID, rec); err != nil {
		return errors.Wrap(err, "updating calendar event")
	}
	// collapse duplicates left by concurrent first syncs
	for _, dup := range existing[1:] {
		if err = s.store.Delete(ctx, core.CalendarEvents, dup.ID); err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "deleting duplicate calendar event")
		}
	}
	return nil
}

// Unsync is DeleteBySource, returning the error. Deleting an absent mirror is a no-op.
func (s *Synchronizer) Unsync(ctx context.Context, st SourceType, id string) error {
	if !st.IsDerived() || id == "" {
		return nil
	}
	existing, err := s.findBySource(ctx, st, id)
	if err != nil {
		return err
	}
	for _, evt := range existing {
		if err = s.store.Delete(ctx, core.CalendarEvents, evt.ID); err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "deleting calendar event")
		}
	}
	return nil
}

// RefreshReferencing re-derives the events referencing a deleted owner through column
// (subject_id or teaching_plan_id), so they stop pointing at it. Failures are logged, never returned.
func (s *Synchronizer) RefreshReferencing(ctx context.Context, column, id string) {
	if err := s.ResyncReferencing(ctx, column, id); err != nil {
		s.logger.Error("refreshing calendar events", err, map[string]interface{}{"column": column, "id": id})
	}
}

// ResyncReferencing is RefreshReferencing, returning the error. Every referencing event is
// attempted; the last failure is returned. Manual events are left untouched.
func (s *Synchronizer) ResyncReferencing(ctx context.Context, column, id string) error {
	if id == "" {
		return nil
	}
	recs, err := s.store.GetAll(ctx, core.CalendarEvents, core.Where(core.Eq(column, id)))
	if err != nil {
		return errors.Wrapf(err, "finding calendar events by %s", column)
	}

	var failed int
	for _, rec := range recs {
		var evt Event
		if err = record.Decode(rec, &evt); err != nil {
			return errors.Wrap(err, "decoding calendar event")
		}
		if !evt.SourceType.IsDerived() || !evt.SourceID.Valid {
			continue
		}
		if e := s.refresh(ctx, evt.SourceType, evt.SourceID.String); e != nil {
			failed++
			err = e
			s.logger.Warn("refreshing calendar event", e, logFields(evt.SourceType, evt.SourceID.String))
		}
	}
	if failed > 0 {
		return errors.Wrapf(err, "refreshing %d calendar events", failed)
	}
	return nil
}

// refresh syncs the event of (st, id) from the source as currently stored, or removes it
// when the source is gone.
func (s *Synchronizer) refresh(ctx context.Context, st SourceType, id string) error {
	src, err := s.loadSource(ctx, st, id)
	if core.IsNotFound(err) {
		return s.Unsync(ctx, st, id)
	}
	if err != nil {
		return err
	}
	return s.Sync(ctx, src)
}

var sourceCollections = map[SourceType]core.Collection{
	SourceAssessment:   core.Assessments,
	SourceLessonPlan:   core.LessonPlans,
	SourceTeachingPlan: core.TeachingPlans,
}

func (s *Synchronizer) loadSource(ctx context.Context, st SourceType, id string) (Source, error) {
	coll, ok := sourceCollections[st]
	if !ok {
		return nil, errors.Errorf("unknown source type %q", st)
	}
	rec, err := s.store.GetByID(ctx, coll, id)
	if err != nil {
		return nil, err
	}

	switch st {
	case SourceAssessment:
		var a planning.Assessment
		err = record.Decode(rec, &a)
		return FromAssessment(a), errors.Wrap(err, "decoding assessment")
	case SourceLessonPlan:
		var lp planning.LessonPlan
		err = record.Decode(rec, &lp)
		return FromLessonPlan(lp), errors.Wrap(err, "decoding lesson plan")
	default:
		var tp planning.TeachingPlan
		err = record.Decode(rec, &tp)
		return FromTeachingPlan(tp), errors.Wrap(err, "decoding teaching plan")
	}
}

// FindBySource returns the event mirroring (st, id).
func (s *Synchronizer) FindBySource(ctx context.Context, st SourceType, id string) (Event, error) {
	existing, err := s.findBySource(ctx, st, id)
	if err != nil {
		return Event{}, err
	}
	if len(existing) == 0 {
		return Event{}, core.ErrNotFound
	}
	return existing[0], nil
}

func (s *Synchronizer) findBySource(ctx context.Context, st SourceType, id string) ([]Event, error) {
	q := core.Where(core.Eq("source_type", string(st)), core.Eq("source_id", id)).
		OrderBy(core.Ordering{Field: "created_at", Ascending: true})
	recs, err := s.store.GetAll(ctx, core.CalendarEvents, q)
	if err != nil {
		return nil, errors.Wrap(err, "finding calendar event by source")
	}
	events := make([]Event, 0, len(recs))
	for _, rec := range recs {
		var evt Event
		if err = record.Decode(rec, &evt); err != nil {
			return nil, errors.Wrap(err, "decoding calendar event")
		}
		events = append(events, evt)
	}
	return events, nil
}

// resolve fills in the subject of a lesson plan from its owning teaching plan.
// An unresolvable owner leaves the subject empty.
func (s *Synchronizer) resolve(ctx context.Context, src Source) Source {
	lps, ok := src.(lessonPlanSource)
	if !ok || lps.resolved || !lps.lp.TeachingPlanID.Valid {
		return src
	}
	rec, err := s.store.GetByID(ctx, core.TeachingPlans, lps.lp.TeachingPlanID.String)
	if err != nil {
		if !core.IsNotFound(err) {
			s.logger.Warn("resolving lesson plan subject", err, logFields(SourceLessonPlan, lps.lp.ID))
		}
		return src
	}
	var owner planning.TeachingPlan
	if err = record.Decode(rec, &owner); err != nil {
		s.logger.Warn("resolving lesson plan subject", err, logFields(SourceLessonPlan, lps.lp.ID))
		return src
	}
	lps.subjectID, lps.resolved = owner.SubjectID, true
	return lps
}

// ResyncReport sums up a ResyncAll run.
type ResyncReport struct {
	Synced  int
	Skipped int
	Failed  int
	Removed int
}

func (r ResyncReport) String() string {
	return fmt.Sprintf("synced=%d skipped=%d failed=%d removed=%d", r.Synced, r.Skipped, r.Failed, r.Removed)
}

// ResyncAll re-derives the events of every assessment, lesson plan and teaching plan, then
// removes derived events whose source no longer exists. Individual failures are counted and
// logged; only failing to read a collection aborts the run.
func (s *Synchronizer) ResyncAll(ctx context.Context) (ResyncReport, error) {
	var report ResyncReport
	alive := map[SourceType]map[string]bool{
		SourceAssessment:   {},
		SourceLessonPlan:   {},
		SourceTeachingPlan: {},
	}

	sources, err := s.allSources(ctx)
	if err != nil {
		return report, err
	}
	for _, src := range sources {
		st, id := src.Ref()
		alive[st][id] = true

		d, ok := Derive(s.resolve(ctx, src))
		if !ok {
			report.Skipped++
			continue
		}
		if err = s.write(ctx, d); err != nil {
			report.Failed++
			s.logger.Error("resyncing calendar event", err, logFields(st, id))
			continue
		}
		report.Synced++
	}

	recs, err := s.store.GetAll(ctx, core.CalendarEvents, core.Query{})
	if err != nil {
		return report, errors.Wrap(err, "listing calendar events")
	}
	for _, rec := range recs {
		var evt Event
		if err = record.Decode(rec, &evt); err != nil {
			return report, errors.Wrap(err, "decoding calendar event")
		}
		ids, mirrored := alive[evt.SourceType]
		if !mirrored || ids[evt.SourceID.String] {
			continue
		}
		if err = s.store.Delete(ctx, core.CalendarEvents, evt.ID); err != nil && !core.IsNotFound(err) {
			report.Failed++
			s.logger.Error("removing orphaned calendar event", err, logFields(evt.SourceType, evt.SourceID.String))
			continue
		}
		report.Removed++
	}
	return report, nil
}

func (s *Synchronizer) allSources(ctx context.Context) ([]Source, error) {
	var sources []Source

	tpRecs, err := s.store.GetAll(ctx, core.TeachingPlans, core.Query{})
	if err != nil {
		return nil, errors.Wrap(err, "listing teaching plans")
	}
	owners := make(map[string]planning.TeachingPlan, len(tpRecs))
	for _, rec := range tpRecs {
		var tp planning.TeachingPlan
		if err = record.Decode(rec, &tp); err != nil {
			return nil, errors.Wrap(err, "decoding teaching plan")
		}
		owners[tp.ID] = tp
		sources = append(sources, FromTeachingPlan(tp))
	}

	lpRecs, err := s.store.GetAll(ctx, core.LessonPlans, core.Query{})
	if err != nil {
		return nil, errors.Wrap(err, "listing lesson plans")
	}
	for _, rec := range lpRecs {
		var lp planning.LessonPlan
		if err = record.Decode(rec, &lp); err != nil {
			return nil, errors.Wrap(err, "decoding lesson plan")
		}
		if owner, ok := owners[lp.TeachingPlanID.String]; ok && lp.TeachingPlanID.Valid {
			sources = append(sources, FromLessonPlan(lp, owner))
		} else {
			sources = append(sources, FromLessonPlan(lp))
		}
	}

	aRecs, err := s.store.GetAll(ctx, core.Assessments, core.Query{})
	if err != nil {
		return nil, errors.Wrap(err, "listing assessments")
	}
	for _, rec := range aRecs {
		var a planning.Assessment
		if err = record.Decode(rec, &a); err != nil {
			return nil, errors.Wrap(err, "decoding assessment")
		}
		sources = append(sources, FromAssessment(a))
	}
	return sources, nil
}

func logFields(st SourceType, id string) map[string]interface{} {
	return map[string]interface{}{"sourceType": string(st), "sourceId": id}
}
