package ga

import (
	"math"
	"math/rand"
	"sort"

	"github.com/taskforge/taskforge/candidate"
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
	"github.com/taskforge/taskforge/stats"
)

// FitnessSample is one row of the generation-by-generation convergence
// trace.
type FitnessSample struct {
	Generation     int
	BestFitness    float64
	AverageFitness float64
}

// Driver is the Genetic Algorithm search driver. It satisfies
// orchestrator.Driver without importing that package, so the orchestrator
// can depend on ga rather than the reverse.
type Driver struct {
	instance *model.ProblemInstance
	config   Config
	seed     int64

	population []Individual

	generation    int
	bestFitness   float64
	bestSolution  schedule.Solution
	noImprovement int
	stopped       bool
	history       []FitnessSample

	stat stats.StatsReceiver
}

// NewDriver builds an initial population of config.PopulationSize random,
// repaired chromosomes.
func NewDriver(instance *model.ProblemInstance, config Config, stat stats.StatsReceiver) (*Driver, error) {
	if err := instance.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}

	seed := int64(1)
	if config.RandomSeed != nil {
		seed = *config.RandomSeed
	} else {
		seed = int64(stats.Time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	d := &Driver{
		instance:    instance,
		config:      config,
		seed:        seed,
		bestFitness: math.Inf(1),
		stat:        stat.Scope("ga"),
	}

	chromosomes := make([]model.Assignment, config.PopulationSize)
	for i := range chromosomes {
		chromosome := candidate.RandomAssignment(instance, rng)
		candidate.Repair(instance, chromosome, rng)
		chromosomes[i] = chromosome
	}
	solutions := schedule.ScheduleAll(instance, chromosomes)

	d.population = make([]Individual, config.PopulationSize)
	for i := range d.population {
		d.population[i] = Individual{Chromosome: chromosomes[i], Solution: solutions[i], Age: 0}
		if solutions[i].Fitness < d.bestFitness {
			d.bestFitness = solutions[i].Fitness
			d.bestSolution = solutions[i]
		}
	}
	d.sortByFitness()
	d.stat.GaugeFloat("bestFitness").Update(d.bestFitness)
	d.history = append(d.history, FitnessSample{
		Generation:     0,
		BestFitness:    d.bestFitness,
		AverageFitness: averageFitness(d.population),
	})

	return d, nil
}

// Step evolves the population by one generation: elitism, tournament
// selection, single-point crossover (producing two children per parent
// pair), mutation, repair, then aging. Every individual in the new
// population ages by one generation; elites are exempt from the age-based
// drop that follows, so only non-elite survivors can be evicted for age.
// MaxAge == 0 disables the drop entirely.
func (d *Driver) Step() error {
	if d.stopped || d.IsComplete() {
		return nil
	}
	timer := d.stat.Latency("stepLatency").Time()
	defer timer.Stop()

	previousBest := d.bestFitness
	rng := deriveRand(d.seed, d.generation, 0)

	eliteCount := d.config.EliteCount()
	if eliteCount > len(d.population) {
		eliteCount = len(d.population)
	}
	next := make([]Individual, 0, d.config.PopulationSize)
	for i := 0; i < eliteCount; i++ {
		next = append(next, d.population[i])
	}

	offspringCount := d.config.PopulationSize - eliteCount
	offspringChromosomes := make([]model.Assignment, 0, offspringCount)
	for pairIndex := 0; len(offspringChromosomes) < offspringCount; pairIndex++ {
		subRng := deriveRand(d.seed, d.generation, pairIndex+1)
		parent1 := d.tournamentSelect(subRng)
		parent2 := d.tournamentSelect(subRng)

		var child1, child2 model.Assignment
		if subRng.Float64() < d.config.CrossoverRate {
			child1, child2 = crossover(parent1.Chromosome, parent2.Chromosome, d.instance.TaskIDs(), subRng)
		} else {
			child1 = parent1.Chromosome.Clone()
			child2 = parent2.Chromosome.Clone()
		}

		mutate(d.instance, child1, d.config.MutationRate, subRng)
		candidate.Repair(d.instance, child1, subRng)
		offspringChromosomes = append(offspringChromosomes, child1)

		if len(offspringChromosomes) < offspringCount {
			mutate(d.instance, child2, d.config.MutationRate, subRng)
			candidate.Repair(d.instance, child2, subRng)
			offspringChromosomes = append(offspringChromosomes, child2)
		}
	}
	offspringSolutions := schedule.ScheduleAll(d.instance, offspringChromosomes)
	for i, sol := range offspringSolutions {
		next = append(next, Individual{Chromosome: offspringChromosomes[i], Solution: sol, Age: 0})
	}

	for i := range next {
		next[i].Age++
	}
	if d.config.MaxAge > 0 {
		for i := eliteCount; i < len(next); i++ {
			if next[i].Age > d.config.MaxAge {
				replacement := candidate.RandomAssignment(d.instance, rng)
				candidate.Repair(d.instance, replacement, rng)
				sol := schedule.Schedule(d.instance, replacement)
				next[i] = Individual{Chromosome: replacement, Solution: sol, Age: 0}
			}
		}
	}

	d.population = next
	d.sortByFitness()

	for _, ind := range d.population {
		if ind.Solution.Fitness < d.bestFitness {
			d.bestFitness = ind.Solution.Fitness
			d.bestSolution = ind.Solution
		}
	}

	d.generation++
	if d.bestFitness < previousBest {
		d.noImprovement = 0
	} else {
		d.noImprovement++
	}

	d.stat.GaugeFloat("bestFitness").Update(d.bestFitness)
	d.stat.Counter("generations").Inc(1)
	d.history = append(d.history, FitnessSample{
		Generation:     d.generation,
		BestFitness:    d.bestFitness,
		AverageFitness: averageFitness(d.population),
	})

	return nil
}

// IsComplete reports whether the driver has reached MaxGenerations or its
// no-improvement budget.
func (d *Driver) IsComplete() bool {
	return d.stopped ||
		d.generation >= d.config.MaxGenerations ||
		d.noImprovement >= d.config.NoImprovementLimit
}

// Stop requests early termination; the next Step is a no-op.
func (d *Driver) Stop() {
	d.stopped = true
}

// BestSolution returns the best solution found so far.
func (d *Driver) BestSolution() *schedule.Solution {
	if d.bestSolution.Assignment == nil {
		return nil
	}
	sol := d.bestSolution
	sol.IterationFound = d.generation
	sol.FitnessHistory = bestFitnessTrace(d.history)
	return &sol
}

// Generation reports the number of completed generations.
func (d *Driver) Generation() int { return d.generation }

// History returns the convergence trace recorded so far.
func (d *Driver) History() []FitnessSample { return d.history }

// LatestAverageFitness reports the population's mean fitness as of the
// most recent step, for orchestrator progress events.
func (d *Driver) LatestAverageFitness() float64 {
	if len(d.history) == 0 {
		return math.Inf(1)
	}
	return d.history[len(d.history)-1].AverageFitness
}

func (d *Driver) sortByFitness() {
	sort.SliceStable(d.population, func(i, j int) bool {
		return d.population[i].Solution.Fitness < d.population[j].Solution.Fitness
	})
}

// tournamentSelect picks TournamentSize individuals uniformly at random and
// returns the fittest.
func (d *Driver) tournamentSelect(rng *rand.Rand) Individual {
	best := d.population[rng.Intn(len(d.population))]
	for i := 1; i < d.config.TournamentSize; i++ {
		challenger := d.population[rng.Intn(len(d.population))]
		if challenger.Solution.Fitness < best.Solution.Fitness {
			best = challenger
		}
	}
	return best
}

// crossover produces the two complementary single-point-crossover children:
// child1 takes a prefix of taskIDs (in sorted order) from parent1 and the
// remainder from parent2; child2 is the mirror image. The cut point is
// drawn from [1, len(taskIDs)-1] so both children always inherit from both
// parents; taskIDs shorter than 2 have no interior cut point and each
// child is just a clone of one parent.
func crossover(parent1, parent2 model.Assignment, taskIDs []int, rng *rand.Rand) (model.Assignment, model.Assignment) {
	child1 := make(model.Assignment, len(taskIDs))
	child2 := make(model.Assignment, len(taskIDs))
	if len(taskIDs) == 0 {
		return child1, child2
	}
	if len(taskIDs) == 1 {
		taskID := taskIDs[0]
		child1[taskID] = parent1[taskID]
		child2[taskID] = parent2[taskID]
		return child1, child2
	}
	point := 1 + rng.Intn(len(taskIDs)-1)
	for i, taskID := range taskIDs {
		if i < point {
			child1[taskID] = parent1[taskID]
			child2[taskID] = parent2[taskID]
		} else {
			child1[taskID] = parent2[taskID]
			child2[taskID] = parent1[taskID]
		}
	}
	return child1, child2
}

// mutate flips each task's machine to a different random one with
// probability rate.
func mutate(instance *model.ProblemInstance, chromosome model.Assignment, rate float64, rng *rand.Rand) {
	for _, taskID := range instance.TaskIDs() {
		if rng.Float64() < rate {
			chromosome[taskID] = candidate.OtherRandomMachine(instance, chromosome[taskID], rng)
		}
	}
}

// bestFitnessTrace projects the generation-by-generation history into the
// best-fitness-per-generation series schedule.Solution.FitnessHistory and
// viz.ConvergenceChart expect.
func bestFitnessTrace(history []FitnessSample) []float64 {
	trace := make([]float64, len(history))
	for i, sample := range history {
		trace[i] = sample.BestFitness
	}
	return trace
}

func averageFitness(population []Individual) float64 {
	if len(population) == 0 {
		return 0
	}
	sum := 0.0
	finite := 0
	for _, ind := range population {
		if math.IsInf(ind.Solution.Fitness, 1) {
			continue
		}
		sum += ind.Solution.Fitness
		finite++
	}
	if finite == 0 {
		return math.Inf(1)
	}
	return sum / float64(finite)
}

// deriveRand builds a per-generation, per-slot random source from the
// driver's seed, matching pso's RNG discipline.
func deriveRand(seed int64, generation, slot int) *rand.Rand {
	mixed := seed*1000003 + int64(generation)*2654435761 + int64(slot)*40503
	return rand.New(rand.NewSource(mixed))
}
