package scraper

import (
	"context"

	"github.com/brogergvhs/mangascout/internal/ui"
)

// strategy is one way of extracting T. An error and an empty result both
// mean "nothing here".
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) ([]T, error)
}

// firstSuccess runs strategies in order and returns the first non-empty
// result. Later strategies are never run once one succeeds.
func firstSuccess[T any](ctx context.Context, log *ui.Logger, strategies ...strategy[T]) []T {
	for _, st := range strategies {
		if ctx.Err() != nil {
			return nil
		}

		out, err := st.run(ctx)
		if err != nil {
			log.Debugf("%s: %v", st.name, err)
			continue
		}
		if len(out) > 0 {
			log.Debugf("%s: %d result(s)", st.name, len(out))
			return out
		}

		log.Debugf("%s: nothing found", st.name)
	}

	return nil
}
