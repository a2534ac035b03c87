package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/cratepanel/internal/model"
)

// CrateOptions tunes LayoutCrate.
type CrateOptions struct {
	Concurrency int // Panels laid out at once; <= 0 means GOMAXPROCS
	Options     []Option
}

// LayoutCrate lays out every panel of a crate concurrently. Panels are
// independent so the result is identical to laying them out one by one;
// layouts are returned in input order. The first failing panel cancels the
// rest.
func LayoutCrate(ctx context.Context, settings model.LayoutSettings, crate model.Crate, opts CrateOptions) (model.CrateResult, error) {
	result := model.CrateResult{
		RunID:   uuid.New().String(),
		Name:    crate.Name,
		Layouts: make([]model.LayoutResult, len(crate.Panels)),
	}
	if len(crate.Panels) == 0 {
		return result, nil
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	layouter := New(settings, opts.Options...)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, panel := range crate.Panels {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			lr, err := layouter.Layout(panel)
			if err != nil {
				return fmt.Errorf("panel %d (%s): %w", i, panel.Label, err)
			}
			// Each goroutine owns its slot.
			result.Layouts[i] = lr
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return model.CrateResult{}, err
	}
	return result, nil
}
