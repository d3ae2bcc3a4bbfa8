package crud_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/crud"
	"github.com/trezcool/planner/core/planning"
	"github.com/trezcool/planner/core/record"
	"github.com/trezcool/planner/tests"
)

var (
	ctx     = context.Background()
	errVeto = errors.New("vetoed")
)

type readOnlyStore struct {
	core.EntityStore
}

func (readOnlyStore) Create(context.Context, core.Collection, record.Record) (record.Record, error) {
	return nil, core.NewStoreError("create", core.Subjects, assert.AnError)
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	store, _ := testutil.NewDummyStore(t)
	var saved []planning.Subject
	svc := crud.NewService[planning.Subject](store, core.Subjects, core.EntitySubject,
		crud.AfterSave(func(_ context.Context, s planning.Subject) { saved = append(saved, s) }),
	)
	assert.Equal(t, core.Subjects, svc.Collection())
	assert.Equal(t, core.EntitySubject, svc.Entity())

	subj, err := svc.Create(ctx, planning.NewSubject{Name: "Math", Code: null.StringFrom("MAT1"), Workload: null.IntFrom(80)})
	require.NoError(t, err)
	assert.NotEmpty(t, subj.ID)
	assert.Equal(t, "Math", subj.Name)
	assert.Equal(t, null.StringFrom("MAT1"), subj.Code)
	assert.Equal(t, 80, subj.Workload.Int)
	assert.False(t, subj.CreatedAt.IsZero())
	assert.Equal(t, []planning.Subject{subj}, saved)

	got, err := svc.Get(ctx, subj.ID)
	require.NoError(t, err)
	assert.Equal(t, subj, got)

	t.Run("unknown field", func(t *testing.T) {
		_, err := svc.Create(ctx, map[string]interface{}{"name": "Art", "lol": true})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr), "got %v", err)
		assert.Equal(t, []core.FieldError{{Field: "lol", Error: "unknown field"}}, vErr.Fields)
		assert.Len(t, saved, 1)
	})

	t.Run("store failure", func(t *testing.T) {
		ro := crud.NewService[planning.Subject](readOnlyStore{store}, core.Subjects, core.EntitySubject)
		_, err := ro.Create(ctx, planning.NewSubject{Name: "Art"})
		var opErr *core.OperationError
		require.True(t, errors.As(err, &opErr), "got %v", err)
		assert.Equal(t, core.ActionCreate, opErr.Action)
		assert.Equal(t, core.EntitySubject, opErr.Entity)
		assert.True(t, errors.Is(err, assert.AnError))
	})
}

func TestService_List(t *testing.T) {
	store, _ := testutil.NewDummyStore(t)
	svc := crud.NewService[planning.Assessment](store, core.Assessments, core.EntityAssessment)

	for _, a := range []planning.NewAssessment{
		{Title: "B", Type: planning.AssessmentExam, Date: core.MustTimestamp("2024-05-01")},
		{Title: "A", Type: planning.AssessmentQuiz, Date: core.MustTimestamp("2024-06-01")},
		{Title: "C", Type: planning.AssessmentExam, Date: core.MustTimestamp("2024-03-01")},
	} {
		_, err := svc.Create(ctx, a)
		require.NoError(t, err)
	}

	titles := func(items []planning.Assessment) []string {
		res := make([]string, 0, len(items))
		for _, a := range items {
			res = append(res, a.Title)
		}
		return res
	}

	tests := []struct {
		name    string
		q       core.Query
		want    []string
		wantErr bool
	}{
		{name: "default ordering", q: core.Query{}, want: []string{"C", "B", "A"}},
		{name: "ordering", q: core.Query{}.OrderBy(core.Ordering{Field: "title"}), want: []string{"C", "B", "A"}},
		{name: "ascending", q: core.Query{}.OrderBy(core.Ordering{Field: "title", Ascending: true}), want: []string{"A", "B", "C"}},
		{name: "filter", q: core.Where(core.Eq("type", "exam")), want: []string{"C", "B"}},
		{name: "range", q: core.Where(core.Gte("date", "2024-04-01"), core.Lte("date", "2024-05-31")), want: []string{"B"}},
		{name: "no match", q: core.Where(core.Eq("type", "project")), want: []string{}},
		{name: "unknown ordering", q: core.Query{}.OrderBy(core.Ordering{Field: "lol"}), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := svc.List(ctx, tt.q)
			if tt.wantErr {
				var vErr *core.ValidationError
				assert.True(t, errors.As(err, &vErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(items))
		})
	}
}

func TestService_Update(t *testing.T) {
	store, _ := testutil.NewDummyStore(t)
	var saved []string
	veto := false
	svc := crud.NewService[planning.Subject](store, core.Subjects, core.EntitySubject,
		crud.AfterSave(func(_ context.Context, s planning.Subject) { saved = append(saved, s.Name) }),
		crud.Guard(func(_ context.Context, s planning.Subject) error {
			if veto {
				return errVeto
			}
			return nil
		}),
	)
	subj, err := svc.Create(ctx, planning.NewSubject{Name: "Math", Code: null.StringFrom("MAT1")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, subj.ID, planning.UpdateSubject{Name: strPtr("Mathematics")})
	require.NoError(t, err)
	assert.Equal(t, subj.ID, updated.ID)
	assert.Equal(t, "Mathematics", updated.Name)
	assert.Equal(t, subj.Code, updated.Code, "absent fields are untouched")
	assert.Equal(t, subj.CreatedAt, updated.CreatedAt)
	assert.Equal(t, []string{"Math", "Mathematics"}, saved)

	t.Run("vetoed", func(t *testing.T) {
		veto = true
		defer func() { veto = false }()

		_, err := svc.Update(ctx, subj.ID, planning.UpdateSubject{Name: strPtr("Lol")})
		assert.Equal(t, errVeto, err)
		got, err := svc.Get(ctx, subj.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mathematics", got.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(ctx, "lol", planning.UpdateSubject{Name: strPtr("Lol")})
		var opErr *core.OperationError
		require.True(t, errors.As(err, &opErr), "got %v", err)
		assert.Equal(t, core.ActionUpdate, opErr.Action)
		assert.True(t, core.IsNotFound(err))
	})
	assert.Len(t, saved, 2)
}

func TestService_Delete(t *testing.T) {
	store, _ := testutil.NewDummyStore(t)
	var deleted []planning.Subject
	svc := crud.NewService[planning.Subject](store, core.Subjects, core.EntitySubject,
		crud.AfterDelete(func(_ context.Context, s planning.Subject) { deleted = append(deleted, s) }),
		crud.Guard(func(_ context.Context, s planning.Subject) error {
			if s.Name == "Locked" {
				return errVeto
			}
			return nil
		}),
	)
	subj, err := svc.Create(ctx, planning.NewSubject{Name: "Math"})
	require.NoError(t, err)
	locked, err := svc.Create(ctx, planning.NewSubject{Name: "Locked"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, subj.ID))
	assert.Equal(t, []planning.Subject{subj}, deleted)

	_, err = svc.Get(ctx, subj.ID)
	assert.True(t, core.IsNotFound(err))

	err = svc.Delete(ctx, subj.ID)
	var opErr *core.OperationError
	require.True(t, errors.As(err, &opErr), "got %v", err)
	assert.Equal(t, core.ActionDelete, opErr.Action)
	assert.True(t, core.IsNotFound(err))

	assert.Equal(t, errVeto, svc.Delete(ctx, locked.ID))
	_, err = svc.Get(ctx, locked.ID)
	assert.NoError(t, err)
	assert.Len(t, deleted, 1)
}
