package echoapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/record"
)

var (
	orderingParam = "ordering"
	fromParam     = "from"
	toParam       = "to"
)

type Ordering struct {
	Orderings []core.Ordering
}

// Bind reads orderings like "date,-title" from the query string. Fields are camelCase.
func (ord *Ordering) Bind(ctx echo.Context) {
	for _, o := range core.ParseOrdering(ctx.QueryParam(orderingParam)) {
		o.Field = record.SnakeCase(o.Field)
		ord.Orderings = append(ord.Orderings, o)
	}
}

// listQuery builds the query of a list request: equality filters on the given camelCase
// params, an inclusive from/to range on the collection's date column, and orderings.
func listQuery(ctx echo.Context, schema core.Schema, filters []string) core.Query {
	var q core.Query
	for _, param := range filters {
		if val := ctx.QueryParam(param); val != "" {
			q = q.Where(core.Eq(record.SnakeCase(param), val))
		}
	}
	if from := ctx.QueryParam(fromParam); from != "" {
		q = q.Where(core.Gte(schema.DateColumn, from))
	}
	if to := ctx.QueryParam(toParam); to != "" {
		// a date-only bound covers its whole day
		if day, err := time.Parse(core.DateLayout, to); err == nil {
			q = q.Where(core.Lt(schema.DateColumn, day.AddDate(0, 0, 1)))
		} else {
			q = q.Where(core.Lte(schema.DateColumn, to))
		}
	}

	var ord Ordering
	ord.Bind(ctx)
	return q.OrderBy(ord.Orderings...)
}

type cleaner[P any] interface {
	*P
	Clean()
}

// bindPayload binds the request body to a new P, cleans and validates it.
func bindPayload[P any, PP cleaner[P]](ctx echo.Context, validate *validator.Validate) (PP, error) {
	data := PP(new(P))
	if err := ctx.Bind(data); err != nil {
		return nil, errors.Wrapf(err, "binding to %T", data)
	}
	data.Clean()
	if err := validate.Struct(data); err != nil {
		return nil, err
	}
	return data, nil
}
