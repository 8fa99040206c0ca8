// Package schedule implements the list-scheduling evaluator: the fitness
// oracle both search drivers call to turn a candidate assignment into a
// concrete schedule, a makespan, and a penalty.
package schedule

import (
	"math"
	"time"

	"github.com/taskforge/taskforge/model"
)

// TaskTiming is the per-task snapshot produced by one evaluation: which
// machine it landed on and when it ran.
type TaskTiming struct {
	TaskID         int     `json:"taskId"`
	MachineID      int     `json:"machineId"`
	StartTime      float64 `json:"startTime"`
	CompletionTime float64 `json:"completionTime"`
}

// MachineTiming is the per-machine snapshot: its tasks in the order they
// were scheduled on it, which is also non-decreasing start-time order (I4).
type MachineTiming struct {
	MachineID int   `json:"machineId"`
	TaskIDs   []int `json:"taskIds"`
}

// Solution is the output of one scheduler evaluation of one assignment.
type Solution struct {
	Assignment model.Assignment `json:"assignment"`

	// Makespan is the max completion time across tasks, or +Inf if a hard
	// constraint (missing memory, missing machine, missing assignment) was
	// violated.
	Makespan float64 `json:"makespan"`
	// TotalPenalty accumulates memory-shortfall and missing-reference
	// penalties; it is always finite.
	TotalPenalty float64 `json:"totalPenalty"`
	// Fitness is Makespan + TotalPenalty; the scalar both drivers minimize.
	Fitness float64 `json:"fitness"`

	FitnessHistory  []float64     `json:"fitnessHistory,omitempty"`
	ComputationTime time.Duration `json:"computationTime,omitempty"`
	IterationFound  int           `json:"iterationFound,omitempty"`

	TaskTimings    map[int]TaskTiming    `json:"taskTimings,omitempty"`
	MachineTimings map[int]MachineTiming `json:"machineTimings,omitempty"`
}

// Infeasible builds the sentinel solution for a candidate that could not be
// evaluated at all: the failure must never propagate as an error, it must
// present as +Inf fitness so the search keeps going.
func Infeasible(assignment model.Assignment) Solution {
	return Solution{
		Assignment:   assignment,
		Makespan:     math.Inf(1),
		TotalPenalty: 0,
		Fitness:      math.Inf(1),
	}
}

// Feasible reports whether the solution violates no hard constraint.
func (s Solution) Feasible() bool {
	return !math.IsInf(s.Makespan, 1)
}
