package ga

import (
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
)

// Individual is one chromosome in the population: an encoded assignment,
// its evaluated solution, and its age in generations.
type Individual struct {
	Chromosome model.Assignment
	Solution   schedule.Solution
	Age        int
}

func (ind Individual) fitness() float64 { return ind.Solution.Fitness }
