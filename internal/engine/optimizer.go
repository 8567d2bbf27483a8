package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/piwi3910/rectbin/internal/model"
)

// Optimizer packs a list of items into as many identical bins as needed.
type Optimizer struct {
	Config   model.BinConfig
	Strategy model.Strategy
	MaxBins  int // 0 means no limit
	Genetic  GeneticConfig
	Logger   *zap.Logger
}

// NewOptimizer returns an optimizer with default genetic parameters.
// A nil logger disables logging.
func NewOptimizer(cfg model.BinConfig, strategy model.Strategy, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{
		Config:   cfg,
		Strategy: strategy,
		Genetic:  DefaultGeneticConfig(),
		Logger:   logger,
	}
}

func (o *Optimizer) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Optimize opens bins one after another until every item is placed. Items
// that can never fit an empty bin, or that are left once MaxBins is reached,
// are reported as unplaced.
func (o *Optimizer) Optimize(items []model.Rectangle) (model.PackResult, error) {
	if err := o.Config.Validate(); err != nil {
		return model.PackResult{}, err
	}
	if _, err := ParseHeuristic(o.Config.Heuristic); err != nil {
		return model.PackResult{}, err
	}

	log := o.logger()
	var pending, rejected []model.Rectangle
	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Warn("item rejected", zap.String("label", item.Label), zap.Error(err))
			rejected = append(rejected, item)
			continue
		}
		if !o.Config.Fits(item) {
			log.Warn("item larger than bin",
				zap.String("label", item.Label),
				zap.Int("width", item.Width),
				zap.Int("height", item.Height))
			rejected = append(rejected, item)
			continue
		}
		pending = append(pending, item)
	}

	var result model.PackResult
	switch o.Strategy {
	case model.StrategyGenetic:
		result = o.optimizeGenetic(pending)
	case model.StrategySequential, model.StrategyGreedy, "":
		result = o.packBins(pending, o.Strategy)
	default:
		return model.PackResult{}, fmt.Errorf("unknown strategy %q", o.Strategy)
	}
	result.Unplaced = append(rejected, result.Unplaced...)

	log.Info("packing finished",
		zap.String("strategy", string(o.Strategy)),
		zap.String("heuristic", o.Config.Heuristic),
		zap.Int("bins", len(result.Bins)),
		zap.Int("placed", result.PlacedCount()),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Float64("usage", result.TotalUsage()))
	return result, nil
}

// packBins fills bins in turn, carrying the items one bin could not hold
// over to the next. The configuration must already be validated.
func (o *Optimizer) packBins(items []model.Rectangle, strategy model.Strategy) model.PackResult {
	var result model.PackResult
	pending := items

	for len(pending) > 0 {
		if o.MaxBins > 0 && len(result.Bins) >= o.MaxBins {
			break
		}
		bin, err := New(o.Config)
		if err != nil {
			break
		}

		var placed []model.Rectangle
		if strategy == model.StrategySequential {
			placed, pending = fillSequential(bin, pending)
		} else {
			placed = bin.InsertMany(pending)
			pending = bin.CantPack()
		}
		// An empty bin that takes nothing will never take anything.
		if len(placed) == 0 {
			break
		}

		result.Bins = append(result.Bins, bin.Result(len(result.Bins)))
		o.logger().Debug("bin packed",
			zap.Int("bin", len(result.Bins)-1),
			zap.Int("placed", len(placed)),
			zap.Int("pending", len(pending)),
			zap.Float64("usage", bin.Usage()))
	}

	result.Unplaced = pending
	return result
}

// fillSequential inserts items in the given order and returns the placed
// rectangles and the items that did not fit.
func fillSequential(bin *Bin, items []model.Rectangle) (placed, rest []model.Rectangle) {
	for _, item := range items {
		if r, ok := bin.Insert(item); ok {
			placed = append(placed, r)
		} else {
			rest = append(rest, item)
		}
	}
	return placed, rest
}

// SortByAreaDesc returns a copy of items ordered largest first. Ties keep
// their original order.
func SortByAreaDesc(items []model.Rectangle) []model.Rectangle {
	sorted := make([]model.Rectangle, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() > sorted[j].Area()
	})
	return sorted
}
