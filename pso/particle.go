package pso

import (
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
)

// Particle is one member of the swarm: an encoded assignment (its
// "position"), a per-task velocity giving the probability of mutating that
// task's machine on the next step, and the best position it has ever
// occupied.
type Particle struct {
	Position model.Assignment
	Velocity map[int]float64

	BestPosition model.Assignment
	BestFitness  float64
	BestSolution schedule.Solution

	CurrentSolution schedule.Solution
}
