package orchestrator

import "github.com/taskforge/taskforge/schedule"

// Driver is the capability set both search drivers expose. The
// orchestrator holds exactly one at a time and never type-switches on a
// concrete PSO or GA value.
type Driver interface {
	// Step advances the search by one iteration/generation.
	Step() error
	// IsComplete reports whether the driver has reached its iteration cap
	// or its no-improvement budget.
	IsComplete() bool
	// BestSolution returns the best solution found so far, or nil if the
	// driver has not evaluated anything yet.
	BestSolution() *schedule.Solution
	// Stop requests early termination; the next Step becomes a no-op.
	Stop()
}

// averageReporter is an optional capability both concrete drivers
// implement; checked via type assertion so the core Driver interface stays
// minimal.
type averageReporter interface {
	LatestAverageFitness() float64
}

// AlgorithmKind selects which driver the orchestrator constructs.
type AlgorithmKind int

const (
	PSO AlgorithmKind = iota
	GA
)

func (k AlgorithmKind) String() string {
	switch k {
	case PSO:
		return "pso"
	case GA:
		return "ga"
	default:
		return "unknown"
	}
}
