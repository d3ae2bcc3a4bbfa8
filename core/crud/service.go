// Package crud provides a typed service over one EntityStore collection.
package crud

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/record"
)

type (
	// AfterSaveFunc runs after a successful create or update, with the stored entity.
	AfterSaveFunc[T any] func(ctx context.Context, saved T)
	// AfterDeleteFunc runs after a successful delete, with the entity as it was before.
	AfterDeleteFunc[T any] func(ctx context.Context, deleted T)
	// GuardFunc may veto an update or delete of the current entity by returning an error.
	GuardFunc[T any] func(ctx context.Context, current T) error

	Option[T any] func(*Service[T])

	// Service reads and writes entities of type T, a struct with camelCase JSON tags, in one collection.
	Service[T any] struct {
		store       core.EntityStore
		coll        core.Collection
		entity      string
		schema      core.Schema
		afterSave   []AfterSaveFunc[T]
		afterDelete []AfterDeleteFunc[T]
		guards      []GuardFunc[T]
	}
)

func AfterSave[T any](fn AfterSaveFunc[T]) Option[T] {
	return func(svc *Service[T]) { svc.afterSave = append(svc.afterSave, fn) }
}

func AfterDelete[T any](fn AfterDeleteFunc[T]) Option[T] {
	return func(svc *Service[T]) { svc.afterDelete = append(svc.afterDelete, fn) }
}

func Guard[T any](fn GuardFunc[T]) Option[T] {
	return func(svc *Service[T]) { svc.guards = append(svc.guards, fn) }
}

// NewService returns the service of coll. entity names T in user notifications (e.g. "lesson plan").
func NewService[T any](store core.EntityStore, coll core.Collection, entity string, opts ...Option[T]) *Service[T] {
	schema, err := core.SchemaOf(coll)
	if err != nil {
		panic(err)
	}
	svc := &Service[T]{
		store:  store,
		coll:   coll,
		entity: entity,
		schema: schema,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service[T]) Collection() core.Collection { return svc.coll }
func (svc *Service[T]) Entity() string              { return svc.entity }
func (svc *Service[T]) Schema() core.Schema         { return svc.schema }

// List returns the entities matching q, ordered by the collection's date column unless q orders them.
func (svc *Service[T]) List(ctx context.Context, q core.Query) ([]T, error) {
	if len(q.Orderings) == 0 {
		q = q.OrderBy(core.Ordering{Field: svc.schema.DateColumn, Ascending: true})
	}
	recs, err := svc.store.GetAll(ctx, svc.coll, q)
	if err != nil {
		return nil, svc.fail(core.ActionList, err)
	}
	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		item, err := svc.decode(rec)
		if err != nil {
			return nil, svc.fail(core.ActionList, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (svc *Service[T]) Get(ctx context.Context, id string) (T, error) {
	rec, err := svc.store.GetByID(ctx, svc.coll, id)
	if err != nil {
		var zero T
		return zero, svc.fail(core.ActionGet, err)
	}
	item, err := svc.decode(rec)
	if err != nil {
		return item, svc.fail(core.ActionGet, err)
	}
	return item, nil
}

// Create stores payload, a struct with camelCase JSON tags, as a new entity.
func (svc *Service[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	var zero T
	rec, err := record.Encode(payload)
	if err != nil {
		return zero, svc.fail(core.ActionCreate, err)
	}
	delete(rec, "id")

	saved, err := svc.store.Create(ctx, svc.coll, rec)
	if err != nil {
		return zero, svc.fail(core.ActionCreate, err)
	}
	item, err := svc.decode(saved)
	if err != nil {
		return zero, svc.fail(core.ActionCreate, err)
	}
	svc.runAfterSave(ctx, item)
	return item, nil
}

// Update writes the fields of payload present in its JSON encoding to the entity id.
func (svc *Service[T]) Update(ctx context.Context, id string, payload interface{}) (T, error) {
	var zero T
	rec, err := record.Encode(payload)
	if err != nil {
		return zero, svc.fail(core.ActionUpdate, err)
	}
	delete(rec, "id")
	delete(rec, "created_at")

	if err = svc.guard(ctx, core.ActionUpdate, id); err != nil {
		return zero, err
	}

	saved, err := svc.store.Update(ctx, svc.coll, id, rec)
	if err != nil {
		return zero, svc.fail(core.ActionUpdate, err)
	}
	item, err := svc.decode(saved)
	if err != nil {
		return zero, svc.fail(core.ActionUpdate, err)
	}
	svc.runAfterSave(ctx, item)
	return item, nil
}

func (svc *Service[T]) Delete(ctx context.Context, id string) error {
	rec, err := svc.store.GetByID(ctx, svc.coll, id)
	if err != nil {
		return svc.fail(core.ActionDelete, err)
	}
	item, err := svc.decode(rec)
	if err != nil {
		return svc.fail(core.ActionDelete, err)
	}
	for _, guard := range svc.guards {
		if err = guard(ctx, item); err != nil {
			return err
		}
	}

	if err = svc.store.Delete(ctx, svc.coll, id); err != nil {
		return svc.fail(core.ActionDelete, err)
	}
	for _, fn := range svc.afterDelete {
		fn(ctx, item)
	}
	return nil
}

func (svc *Service[T]) guard(ctx context.Context, action core.Action, id string) error {
	if len(svc.guards) == 0 {
		return nil
	}
	current, err := svc.Get(ctx, id)
	if err != nil {
		return svc.fail(action, err)
	}
	for _, guard := range svc.guards {
		if err = guard(ctx, current); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service[T]) runAfterSave(ctx context.Context, item T) {
	for _, fn := range svc.afterSave {
		fn(ctx, item)
	}
}

func (svc *Service[T]) decode(rec record.Record) (T, error) {
	var item T
	err := record.Decode(rec, &item)
	return item, errors.Wrapf(err, "decoding %s", svc.entity)
}

// fail wraps err as the OperationError of action. Validation errors are returned as is: they
// describe the user input, not the operation.
func (svc *Service[T]) fail(action core.Action, err error) error {
	var opErr *core.OperationError
	if errors.As(err, &opErr) {
		return &core.OperationError{Action: action, Entity: svc.entity, Err: opErr.Err}
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		return vErr
	}
	return core.NewOperationError(action, svc.entity, err)
}
