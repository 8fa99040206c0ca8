package model

import (
	"fmt"
	"sort"
)

const (
	// DefaultMemoryPenaltyCoefficient is applied per unit of memory shortfall.
	DefaultMemoryPenaltyCoefficient = 1000.0
	// DefaultPrecedencePenaltyCoefficient is reserved for future soft-precedence
	// variants; the list scheduler enforces precedence structurally and never
	// consults this value.
	DefaultPrecedencePenaltyCoefficient = 1000.0
)

// ProblemInstance is the immutable static-scheduling problem: a task set
// partially ordered by a precedence DAG, and a machine set to assign them to.
// It must not be mutated for the duration of a search run; the scheduler
// only ever reads it, working on deep copies of its machines.
type ProblemInstance struct {
	Tasks    map[int]*Task           `json:"tasks"`
	Machines map[int]*VirtualMachine `json:"machines"`

	MemoryPenaltyCoefficient     float64 `json:"memoryPenaltyCoefficient"`
	PrecedencePenaltyCoefficient float64 `json:"precedencePenaltyCoefficient"`
}

// NewProblemInstance builds an instance with the default penalty coefficients.
func NewProblemInstance() *ProblemInstance {
	return &ProblemInstance{
		Tasks:                        make(map[int]*Task),
		Machines:                     make(map[int]*VirtualMachine),
		MemoryPenaltyCoefficient:     DefaultMemoryPenaltyCoefficient,
		PrecedencePenaltyCoefficient: DefaultPrecedencePenaltyCoefficient,
	}
}

// TaskIDs returns every task id in ascending order.
func (p *ProblemInstance) TaskIDs() []int {
	ids := make([]int, 0, len(p.Tasks))
	for id := range p.Tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MachineIDs returns every machine id in ascending order.
func (p *ProblemInstance) MachineIDs() []int {
	ids := make([]int, 0, len(p.Machines))
	for id := range p.Machines {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ValidationError reports every task id that participates in a detected
// precedence cycle, or a predecessor reference to a task that doesn't exist.
type ValidationError struct {
	CyclicTaskIDs       []int
	DanglingPredecessor map[int]int // task id -> missing predecessor id
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.CyclicTaskIDs) > 0:
		return fmt.Sprintf("precedence graph contains a cycle through tasks %v", e.CyclicTaskIDs)
	case len(e.DanglingPredecessor) > 0:
		return fmt.Sprintf("tasks reference missing predecessors: %v", e.DanglingPredecessor)
	default:
		return "invalid problem instance"
	}
}

// Validate checks that every predecessor id refers to an existing task and
// that the precedence graph is a DAG. It uses DFS with a recursion-stack set
// rather than union-find, since we also want to name the cyclic
// tasks for the caller's InvalidInstance error, not just a boolean.
func (p *ProblemInstance) Validate() error {
	dangling := map[int]int{}
	for id, t := range p.Tasks {
		for pred := range t.PredecessorIDs {
			if _, ok := p.Tasks[pred]; !ok {
				dangling[id] = pred
			}
		}
	}
	if len(dangling) > 0 {
		return &ValidationError{DanglingPredecessor: dangling}
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[int]int, len(p.Tasks))
	var cyclic []int

	var visit func(id int, stack []int) bool
	visit = func(id int, stack []int) bool {
		state[id] = visiting
		stack = append(stack, id)
		for pred := range p.Tasks[id].PredecessorIDs {
			switch state[pred] {
			case visiting:
				// pred is on the current DFS path; the cycle is the part of
				// the path from pred onward.
				for i, onPath := range stack {
					if onPath == pred {
						cyclic = append(cyclic, stack[i:]...)
						break
					}
				}
				return false
			case unvisited:
				if !visit(pred, stack) {
					return false
				}
			}
		}
		state[id] = visited
		return true
	}

	for _, id := range p.TaskIDs() {
		if state[id] == unvisited {
			if !visit(id, nil) {
				return &ValidationError{CyclicTaskIDs: dedupSorted(cyclic)}
			}
		}
	}
	return nil
}

func dedupSorted(ids []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
