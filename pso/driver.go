package pso

import (
	"math"
	"math/rand"
	"sync"

	"github.com/taskforge/taskforge/candidate"
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/parallel"
	"github.com/taskforge/taskforge/schedule"
	"github.com/taskforge/taskforge/stats"
)

// FitnessSample is one row of the iteration-by-iteration convergence trace.
type FitnessSample struct {
	Iteration      int
	BestFitness    float64
	AverageFitness float64
}

// Driver is the discrete PSO search driver. It satisfies
// orchestrator.Driver without importing that package, so the orchestrator
// can depend on pso rather than the reverse.
type Driver struct {
	instance *model.ProblemInstance
	config   Config
	seed     int64

	particles []*Particle

	mu                sync.Mutex
	globalBestFitness float64
	globalBest        schedule.Solution

	iteration     int
	noImprovement int
	stopped       bool
	history       []FitnessSample

	stat stats.StatsReceiver
}

// NewDriver builds a swarm of config.SwarmSize particles seeded with
// uniformly random, repaired assignments.
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
		instance:          instance,
		config:            config,
		seed:              seed,
		globalBestFitness: math.Inf(1),
		stat:              stat.Scope("pso"),
	}

	d.particles = make([]*Particle, config.SwarmSize)
	for i := range d.particles {
		position := candidate.RandomAssignment(instance, rng)
		candidate.Repair(instance, position, rng)
		velocity := make(map[int]float64, len(instance.Tasks))
		for _, taskID := range instance.TaskIDs() {
			velocity[taskID] = rng.Float64()
		}
		d.particles[i] = &Particle{
			Position:     position,
			Velocity:     velocity,
			BestPosition: position.Clone(),
			BestFitness:  math.Inf(1),
		}
	}

	positions := make([]model.Assignment, len(d.particles))
	for i, p := range d.particles {
		positions[i] = p.Position
	}
	solutions := schedule.ScheduleAll(instance, positions)
	for i, p := range d.particles {
		p.CurrentSolution = solutions[i]
		p.BestFitness = solutions[i].Fitness
		p.BestPosition = solutions[i].Assignment.Clone()
		p.BestSolution = solutions[i]
		if solutions[i].Fitness < d.globalBestFitness {
			d.globalBestFitness = solutions[i].Fitness
			d.globalBest = solutions[i]
		}
	}
	d.stat.GaugeFloat("bestFitness").Update(d.globalBestFitness)
	d.history = append(d.history, FitnessSample{
		Iteration:      0,
		BestFitness:    d.globalBestFitness,
		AverageFitness: averageFitness(d.particles),
	})

	return d, nil
}

// Step runs one PSO iteration: evaluate, update personal/global bests,
// update velocity and position, repair.
func (d *Driver) Step() error {
	if d.stopped || d.IsComplete() {
		return nil
	}
	timer := d.stat.Latency("stepLatency").Time()
	defer timer.Stop()

	previousBest := d.globalBestFitness

	positions := make([]model.Assignment, len(d.particles))
	for i, p := range d.particles {
		positions[i] = p.Position
	}
	solutions := schedule.ScheduleAll(d.instance, positions)

	parallel.ForEachIndex(len(d.particles), func(i int) {
		p := d.particles[i]
		p.CurrentSolution = solutions[i]
		if solutions[i].Fitness < p.BestFitness {
			p.BestFitness = solutions[i].Fitness
			p.BestPosition = solutions[i].Assignment.Clone()
			p.BestSolution = solutions[i]
		}
		d.mu.Lock()
		if p.BestFitness < d.globalBestFitness {
			d.globalBestFitness = p.BestFitness
			d.globalBest = p.BestSolution
		}
		d.mu.Unlock()
	}, nil)

	taskIDs := d.instance.TaskIDs()
	parallel.ForEachIndex(len(d.particles), func(i int) {
		p := d.particles[i]
		subRng := deriveRand(d.seed, d.iteration, i)
		nextPosition := p.Position.Clone()
		for _, taskID := range taskIDs {
			cognitive := 0.0
			if p.BestPosition[taskID] != p.Position[taskID] {
				cognitive = 1.0
			}
			social := 0.0
			if d.globalBest.Assignment != nil && d.globalBest.Assignment[taskID] != p.Position[taskID] {
				social = 1.0
			}
			r1, r2 := subRng.Float64(), subRng.Float64()
			v := d.config.InertiaWeight*p.Velocity[taskID] +
				d.config.CognitiveWeight*r1*cognitive +
				d.config.SocialWeight*r2*social
			v = clamp01(v)
			p.Velocity[taskID] = v
			if subRng.Float64() < v {
				nextPosition[taskID] = candidate.OtherRandomMachine(d.instance, p.Position[taskID], subRng)
			}
		}
		candidate.Repair(d.instance, nextPosition, subRng)
		p.Position = nextPosition
	}, nil)

	d.iteration++
	if d.globalBestFitness < previousBest {
		d.noImprovement = 0
	} else {
		d.noImprovement++
	}

	d.stat.GaugeFloat("bestFitness").Update(d.globalBestFitness)
	d.stat.Counter("iterations").Inc(1)
	d.history = append(d.history, FitnessSample{
		Iteration:      d.iteration,
		BestFitness:    d.globalBestFitness,
		AverageFitness: averageFitness(d.particles),
	})

	return nil
}

// IsComplete reports whether the driver has reached MaxIterations or its
// no-improvement budget.
func (d *Driver) IsComplete() bool {
	return d.stopped ||
		d.iteration >= d.config.MaxIterations ||
		d.noImprovement >= d.config.NoImprovementLimit
}

// Stop requests early termination; the next Step is a no-op.
func (d *Driver) Stop() {
	d.stopped = true
}

// BestSolution returns the best solution found so far, or nil if the swarm
// has not been evaluated yet.
func (d *Driver) BestSolution() *schedule.Solution {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.globalBest.Assignment == nil {
		return nil
	}
	sol := d.globalBest
	sol.IterationFound = d.iteration
	sol.FitnessHistory = bestFitnessTrace(d.history)
	return &sol
}

// Iteration reports the number of completed iterations.
func (d *Driver) Iteration() int { return d.iteration }

// History returns the convergence trace recorded so far.
func (d *Driver) History() []FitnessSample { return d.history }

// LatestAverageFitness reports the swarm's mean fitness as of the most
// recent step, for orchestrator progress events.
func (d *Driver) LatestAverageFitness() float64 {
	if len(d.history) == 0 {
		return math.Inf(1)
	}
	return d.history[len(d.history)-1].AverageFitness
}

// bestFitnessTrace projects the iteration-by-iteration history into the
// best-fitness-per-iteration series schedule.Solution.FitnessHistory and
// viz.ConvergenceChart expect.
func bestFitnessTrace(history []FitnessSample) []float64 {
	trace := make([]float64, len(history))
	for i, sample := range history {
		trace[i] = sample.BestFitness
	}
	return trace
}

func averageFitness(particles []*Particle) float64 {
	if len(particles) == 0 {
		return 0
	}
	sum := 0.0
	finite := 0
	for _, p := range particles {
		if math.IsInf(p.CurrentSolution.Fitness, 1) {
			continue
		}
		sum += p.CurrentSolution.Fitness
		finite++
	}
	if finite == 0 {
		return math.Inf(1)
	}
	return sum / float64(finite)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// deriveRand builds a per-particle, per-iteration random source from the
// driver's seed so parallel particle updates stay reproducible without
// sharing one *rand.Rand across goroutines.
func deriveRand(seed int64, iteration, index int) *rand.Rand {
	mixed := seed*1000003 + int64(iteration)*2654435761 + int64(index)*40503
	return rand.New(rand.NewSource(mixed))
}
