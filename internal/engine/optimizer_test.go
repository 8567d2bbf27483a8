package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/rectbin/internal/model"
)

func defaultTestConfig() model.BinConfig {
	return model.BinConfig{Width: 100, Height: 60, AllowRotation: true, Heuristic: "BestAreaFit"}
}

func TestOptimize_SingleBinSingleItem(t *testing.T) {
	opt := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, nil)

	result, err := opt.Optimize([]model.Rectangle{model.NewRectangle("A", 50, 30)})
	require.NoError(t, err)

	assert.Len(t, result.Bins, 1)
	assert.Empty(t, result.Unplaced)
	require.Len(t, result.Bins[0].Used, 1)
	assert.Equal(t, "A", result.Bins[0].Used[0].Label)
	assert.Equal(t, 0, result.Bins[0].Index)
}

func TestOptimize_OpensNewBinsForOverflow(t *testing.T) {
	opt := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, nil)
	items := model.ExpandItems([]model.ItemSpec{{ID: "half", Label: "Half", Width: 50, Height: 60, Quantity: 5}})

	result, err := opt.Optimize(items)
	require.NoError(t, err)

	require.Len(t, result.Bins, 3)
	assert.Len(t, result.Bins[0].Used, 2)
	assert.Len(t, result.Bins[1].Used, 2)
	assert.Len(t, result.Bins[2].Used, 1)
	assert.Empty(t, result.Unplaced)
	assert.Equal(t, 2, result.Bins[2].Index)
	assert.InDelta(t, 5.0/6.0, result.TotalUsage(), 1e-9)
}

func TestOptimize_ItemTooLargeDoesNotLoop(t *testing.T) {
	opt := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, nil)
	items := []model.Rectangle{
		model.NewRectangle("Huge", 200, 200),
		model.NewRectangle("Fits", 10, 10),
	}

	result, err := opt.Optimize(items)
	require.NoError(t, err)

	require.Len(t, result.Bins, 1)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "Huge", result.Unplaced[0].Label)
}

func TestOptimize_RotationNeededToFit(t *testing.T) {
	cfg := defaultTestConfig()
	item := model.NewRectangle("Tall", 50, 90)

	result, err := NewOptimizer(cfg, model.StrategyGreedy, nil).Optimize([]model.Rectangle{item})
	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	assert.True(t, result.Bins[0].Used[0].Rotated)

	cfg.AllowRotation = false
	result, err = NewOptimizer(cfg, model.StrategyGreedy, nil).Optimize([]model.Rectangle{item})
	require.NoError(t, err)
	assert.Empty(t, result.Bins)
	assert.Len(t, result.Unplaced, 1)
}

func TestOptimize_InvalidItemRejected(t *testing.T) {
	opt := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, nil)
	bad := model.NewWindowedRectangle("BadWindow", 10, 10, model.Window{Width: 20, Height: 2})

	result, err := opt.Optimize([]model.Rectangle{bad, model.NewRectangle("Ok", 5, 5)})
	require.NoError(t, err)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "BadWindow", result.Unplaced[0].Label)
	assert.Equal(t, 1, result.PlacedCount())
}

func TestOptimize_MaxBins(t *testing.T) {
	opt := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, nil)
	opt.MaxBins = 1
	items := model.ExpandItems([]model.ItemSpec{{ID: "half", Label: "Half", Width: 50, Height: 60, Quantity: 3}})

	result, err := opt.Optimize(items)
	require.NoError(t, err)
	assert.Len(t, result.Bins, 1)
	assert.Len(t, result.Unplaced, 1)
}

func TestOptimize_Sequential(t *testing.T) {
	cfg := model.BinConfig{Width: 10, Height: 10, Heuristic: "BottomLeft"}
	opt := NewOptimizer(cfg, model.StrategySequential, nil)
	items := []model.Rectangle{
		model.NewRectangle("First", 6, 10),
		model.NewRectangle("Second", 4, 10),
	}

	result, err := opt.Optimize(items)
	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	used := result.Bins[0].Used
	require.Len(t, used, 2)
	assert.Equal(t, "First", used[0].Label)
	assert.Equal(t, 6, used[1].X)
	assert.Equal(t, 1.0, result.Bins[0].Usage())
}

func TestOptimize_BordersRespected(t *testing.T) {
	cfg := model.BinConfig{Width: 20, Height: 20, LeftBorder: 5, BottomBorder: 4, Heuristic: "BottomLeft"}
	result, err := NewOptimizer(cfg, model.StrategyGreedy, nil).Optimize([]model.Rectangle{model.NewRectangle("A", 15, 16)})
	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	placed := result.Bins[0].Used[0]
	assert.Equal(t, 5, placed.X)
	assert.Equal(t, 4, placed.Y)
	assert.Empty(t, result.Bins[0].Free)
}

func TestOptimize_ConfigErrors(t *testing.T) {
	_, err := NewOptimizer(model.BinConfig{Width: 10, Height: 10, Heuristic: "Unknown"}, model.StrategyGreedy, nil).Optimize(nil)
	assert.ErrorIs(t, err, ErrUnknownHeuristic)

	_, err = NewOptimizer(model.BinConfig{Width: -1, Height: 10, Heuristic: "BottomLeft"}, model.StrategyGreedy, nil).Optimize(nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = NewOptimizer(defaultTestConfig(), model.Strategy("random"), nil).Optimize(nil)
	assert.Error(t, err)
}

func TestOptimize_EmptyInput(t *testing.T) {
	result, err := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, nil).Optimize(nil)
	require.NoError(t, err)
	assert.Empty(t, result.Bins)
	assert.Empty(t, result.Unplaced)
}

func TestOptimize_LogsSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	opt := NewOptimizer(defaultTestConfig(), model.StrategyGreedy, zap.New(core))

	_, err := opt.Optimize([]model.Rectangle{model.NewRectangle("Huge", 500, 500), model.NewRectangle("A", 5, 5)})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("item larger than bin").Len())
	finished := logs.FilterMessage("packing finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(1), finished[0].ContextMap()["placed"])
}

func TestSortByAreaDesc(t *testing.T) {
	items := []model.Rectangle{
		model.NewRectangle("Small", 1, 1),
		model.NewRectangle("Big", 5, 5),
		model.NewRectangle("AlsoSmall", 1, 1),
	}
	sorted := SortByAreaDesc(items)
	assert.Equal(t, "Big", sorted[0].Label)
	assert.Equal(t, "Small", sorted[1].Label)
	assert.Equal(t, "AlsoSmall", sorted[2].Label)
	assert.Equal(t, "Small", items[0].Label, "input must not be reordered")
}
