package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/piwi3910/rectbin/internal/model"
)

// ComparisonScenario defines a named bin configuration and strategy to compare.
type ComparisonScenario struct {
	Name     string
	Config   model.BinConfig
	Strategy model.Strategy
}

// ComparisonResult holds the packing result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.PackResult
	BinsUsed      int
	Placed        int
	WastePercent  float64
	UnplacedCount int
	Err           error
}

// CompareScenarios packs the same items under every scenario. Scenarios run
// concurrently, each with its own bins; results keep scenario order.
func CompareScenarios(scenarios []ComparisonScenario, items []model.Rectangle, logger *zap.Logger) []ComparisonResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]ComparisonResult, len(scenarios))

	var wg sync.WaitGroup
	for i, scenario := range scenarios {
		wg.Add(1)
		go func(i int, scenario ComparisonScenario) {
			defer wg.Done()
			opt := NewOptimizer(scenario.Config, scenario.Strategy, logger.With(zap.String("scenario", scenario.Name)))
			result, err := opt.Optimize(items)
			results[i] = ComparisonResult{
				Scenario:      scenario,
				Result:        result,
				BinsUsed:      len(result.Bins),
				Placed:        result.PlacedCount(),
				WastePercent:  100.0 - result.TotalUsage()*100.0,
				UnplacedCount: len(result.Unplaced),
				Err:           err,
			}
		}(i, scenario)
	}
	wg.Wait()

	return results
}

// BuildDefaultScenarios returns one scenario per heuristic with the base
// rotation setting, followed by the same heuristics with rotation flipped.
func BuildDefaultScenarios(base model.BinConfig, strategy model.Strategy) []ComparisonScenario {
	var scenarios []ComparisonScenario
	for _, rotate := range []bool{base.AllowRotation, !base.AllowRotation} {
		for _, h := range Heuristics {
			cfg := base
			cfg.Heuristic = h.String()
			cfg.AllowRotation = rotate
			name := h.String()
			if rotate {
				name += " (rotation)"
			}
			scenarios = append(scenarios, ComparisonScenario{
				Name:     name,
				Config:   cfg,
				Strategy: strategy,
			})
		}
	}
	return scenarios
}

// BestComparison picks the result with the fewest unplaced items, then the
// fewest bins, then the least waste. Failed scenarios are skipped.
func BestComparison(results []ComparisonResult) (ComparisonResult, bool) {
	bestIdx := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if bestIdx < 0 || betterComparison(r, results[bestIdx]) {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return ComparisonResult{}, false
	}
	return results[bestIdx], true
}

func betterComparison(a, b ComparisonResult) bool {
	if a.UnplacedCount != b.UnplacedCount {
		return a.UnplacedCount < b.UnplacedCount
	}
	if a.BinsUsed != b.BinsUsed {
		return a.BinsUsed < b.BinsUsed
	}
	return a.WastePercent < b.WastePercent
}

func (r ComparisonResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: error: %v", r.Scenario.Name, r.Err)
	}
	return fmt.Sprintf("%s: %d bins, %d placed, %d unplaced, %.1f%% waste",
		r.Scenario.Name, r.BinsUsed, r.Placed, r.UnplacedCount, r.WastePercent)
}
