package engine

import (
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/piwi3910/rectbin/internal/model"
)

// GeneticConfig holds parameters for the insertion order search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 40,
		Generations:    60,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// scaled grows the search for larger item lists.
func (c GeneticConfig) scaled(items int) GeneticConfig {
	if items > 20 && c.Generations < 100 {
		c.Generations = 100
	}
	if items > 50 {
		if c.Generations < 150 {
			c.Generations = 150
		}
		if c.PopulationSize < 60 {
			c.PopulationSize = 60
		}
	}
	return c
}

// chromosome is an insertion order: a permutation of item indices.
type chromosome struct {
	order   []int
	fitness float64
}

type geneticOptimizer struct {
	opt    *Optimizer
	config GeneticConfig
	items  []model.Rectangle
	rng    *rand.Rand
}

func newGeneticOptimizer(opt *Optimizer, config GeneticConfig, items []model.Rectangle) *geneticOptimizer {
	return &geneticOptimizer{
		opt:    opt,
		config: config,
		items:  items,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// optimizeGenetic searches insertion orders for the given items. Each order
// is decoded by inserting the items one by one into successive bins.
func (o *Optimizer) optimizeGenetic(items []model.Rectangle) model.PackResult {
	if len(items) == 0 {
		return model.PackResult{}
	}
	config := o.Genetic
	if config.PopulationSize <= 0 {
		config = DefaultGeneticConfig()
	}
	ga := newGeneticOptimizer(o, config.scaled(len(items)), items)
	return ga.optimize()
}

func (g *geneticOptimizer) optimize() model.PackResult {
	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		sortByFitness(population)

		next := make([]chromosome, 0, g.config.PopulationSize)
		elite := min(g.config.EliteCount, len(population))
		for i := 0; i < elite; i++ {
			next = append(next, population[i].clone())
		}

		for len(next) < g.config.PopulationSize {
			p1 := g.tournamentSelect(population)
			p2 := g.tournamentSelect(population)
			child := g.orderCrossover(p1, p2)
			g.mutate(&child)
			child.fitness = g.evaluate(child)
			next = append(next, child)
		}
		population = next

		if gen%20 == 0 {
			g.opt.logger().Debug("genetic generation",
				zap.Int("generation", gen),
				zap.Float64("best_fitness", population[0].fitness))
		}
	}

	sortByFitness(population)
	return g.decode(population[0])
}

func sortByFitness(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
}

// initPopulation creates random orders plus the largest-area-first order.
func (g *geneticOptimizer) initPopulation() []chromosome {
	n := len(g.items)
	population := make([]chromosome, g.config.PopulationSize)
	for i := range population {
		population[i] = chromosome{order: g.rng.Perm(n)}
	}
	if len(population) > 0 {
		population[0] = g.areaDescChromosome()
	}
	return population
}

func (g *geneticOptimizer) areaDescChromosome() chromosome {
	order := make([]int, len(g.items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return g.items[order[i]].Area() > g.items[order[j]].Area()
	})
	return chromosome{order: order}
}

// evaluate scores the packing of a chromosome. Higher is better.
func (g *geneticOptimizer) evaluate(c chromosome) float64 {
	return packFitness(g.decode(c))
}

// packFitness rewards usage and penalises unplaced items and extra bins.
func packFitness(result model.PackResult) float64 {
	if len(result.Bins) == 0 {
		return 0
	}
	fitness := result.TotalUsage() -
		float64(len(result.Unplaced))*0.1 -
		float64(len(result.Bins)-1)*0.05
	return max(fitness, 0)
}

func (g *geneticOptimizer) decode(c chromosome) model.PackResult {
	ordered := make([]model.Rectangle, len(c.order))
	for i, idx := range c.order {
		ordered[i] = g.items[idx]
	}
	return g.opt.packBins(ordered, model.StrategySequential)
}

// tournamentSelect picks the fittest of TournamentSize random individuals.
func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return best.clone()
}

// orderCrossover implements OX1: a slice of parent1 is kept in place and the
// remaining positions are filled in parent2's order.
func (g *geneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return parent1.clone()
	}

	a, b := g.rng.Intn(n), g.rng.Intn(n)
	if a > b {
		a, b = b, a
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make(map[int]bool, b-a+1)
	for i := a; i <= b; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	pos := (b + 1) % n
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child.order[pos] = idx
			pos = (pos + 1) % n
		}
	}
	return child
}

// mutate applies swap and, less often, inversion mutation.
func (g *geneticOptimizer) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for ; i < j; i, j = i+1, j-1 {
			c.order[i], c.order[j] = c.order[j], c.order[i]
		}
	}
}

func (c chromosome) clone() chromosome {
	order := make([]int, len(c.order))
	copy(order, c.order)
	return chromosome{order: order, fitness: c.fitness}
}

// OptimizeGenetic packs items with the genetic order search and default parameters.
func OptimizeGenetic(cfg model.BinConfig, items []model.Rectangle) (model.PackResult, error) {
	return NewOptimizer(cfg, model.StrategyGenetic, nil).Optimize(items)
}
