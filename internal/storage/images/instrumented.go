package images

import (
	"context"
	"errors"

	"github.com/automartines/autoonline/internal/observability"
)

// Instrumented counts store operations per driver and outcome.
type Instrumented struct {
	Store
	prom *observability.Prom
}

func Instrument(s Store, prom *observability.Prom) Store {
	if prom == nil {
		return s
	}
	return &Instrumented{Store: s, prom: prom}
}

func (i *Instrumented) Save(ctx context.Context, u Upload) (string, error) {
	ref, err := i.Store.Save(ctx, u)
	i.prom.ObserveImageOp(i.Driver(), "save", result(err))
	return ref, err
}

func (i *Instrumented) Remove(ctx context.Context, ref string) error {
	err := i.Store.Remove(ctx, ref)
	i.prom.ObserveImageOp(i.Driver(), "remove", result(err))
	return err
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrForeignRef):
		return "rejected"
	default:
		return "error"
	}
}
