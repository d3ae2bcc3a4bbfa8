package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/planner/core/crud"
)

// resourceAPI serves the CRUD endpoints of one entity: T is the entity, N the payload that
// creates or replaces it and U the payload of a partial update.
type resourceAPI[T, N, U any, PN cleaner[N], PU cleaner[U]] struct {
	svc      *crud.Service[T]
	validate *validator.Validate
	filters  []string
}

func registerResource[T, N, U any, PN cleaner[N], PU cleaner[U]](
	g *echo.Group,
	path string,
	svc *crud.Service[T],
	validate *validator.Validate,
	filters ...string,
) {
	api := &resourceAPI[T, N, U, PN, PU]{
		svc:      svc,
		validate: validate,
		filters:  filters,
	}

	rg := g.Group(path)
	rg.GET("", api.query)
	rg.POST("", api.create)

	// detail endpoints
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.replace)
	rg.PATCH("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *resourceAPI[T, N, U, PN, PU]) query(ctx echo.Context) error {
	q := listQuery(ctx, api.svc.Schema(), api.filters)
	items, err := api.svc.List(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrapf(err, "listing %ss", api.svc.Entity())
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *resourceAPI[T, N, U, PN, PU]) create(ctx echo.Context) error {
	data, err := bindPayload[N, PN](ctx, api.validate)
	if err != nil {
		return err
	}
	item, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.svc.Entity())
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *resourceAPI[T, N, U, PN, PU]) retrieve(ctx echo.Context) error {
	item, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "getting %s", api.svc.Entity())
	}
	return ctx.JSON(http.StatusOK, item)
}

// replace overwrites every field of the entity: fields absent from the body are cleared.
func (api *resourceAPI[T, N, U, PN, PU]) replace(ctx echo.Context) error {
	data, err := bindPayload[N, PN](ctx, api.validate)
	if err != nil {
		return err
	}
	item, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "replacing %s", api.svc.Entity())
	}
	return ctx.JSON(http.StatusOK, item)
}

// update only writes the fields present in the body.
func (api *resourceAPI[T, N, U, PN, PU]) update(ctx echo.Context) error {
	data, err := bindPayload[U, PU](ctx, api.validate)
	if err != nil {
		return err
	}
	item, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.svc.Entity())
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *resourceAPI[T, N, U, PN, PU]) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", api.svc.Entity())
	}
	return ctx.NoContent(http.StatusNoContent)
}
