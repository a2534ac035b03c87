package engine

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/piwi3910/cratepanel/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleCrate() model.Crate {
	return model.Crate{
		Name: "export-crate",
		Panels: []model.Panel{
			model.NewPanel("Front", 121.3, 77.7),
			model.NewPanel("Back", 121.3, 77.7),
			model.NewPanel("Left", 40, 99.7),
			model.NewPanel("Right", 40, 99.7),
			model.NewPanel("Top", 300, 200),
			model.NewPanel("Bottom", 0, 0),
		},
	}
}

func TestLayoutCrate_MatchesSequential(t *testing.T) {
	s := model.DefaultSettings()
	s.Strategy = model.StrategyHybrid
	crate := sampleCrate()

	got, err := LayoutCrate(context.Background(), s, crate, CrateOptions{Concurrency: 3})
	require.NoError(t, err)

	assert.Equal(t, crate.Name, got.Name)
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Layouts, len(crate.Panels))

	lo := New(s)
	for i, p := range crate.Panels {
		want, err := lo.Layout(p)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got.Layouts[i]); diff != "" {
			t.Errorf("panel %d (%s) differs from sequential layout (-want +got):\n%s", i, p.Label, diff)
		}
	}
}

func TestLayoutCrate_Empty(t *testing.T) {
	got, err := LayoutCrate(context.Background(), model.DefaultSettings(), model.Crate{Name: "none"}, CrateOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Layouts)
}

func TestLayoutCrate_FailsOnInvalidPanel(t *testing.T) {
	crate := sampleCrate()
	crate.Panels[2].Height = math.NaN()

	_, err := LayoutCrate(context.Background(), model.DefaultSettings(), crate, CrateOptions{Concurrency: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "panel 2 (Left)")
}

func TestLayoutCrate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LayoutCrate(ctx, model.DefaultSettings(), sampleCrate(), CrateOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
