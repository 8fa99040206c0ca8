// Package model defines the static task-scheduling problem: tasks bound by
// a precedence DAG, heterogeneous virtual machines, and the assignment
// between them that the search drivers evolve.
package model

import (
	"encoding/json"
	"sort"
)

// Task is a unit of compute work. PredecessorIDs references other tasks by
// id, never by pointer, so the graph can be copied and serialized without
// lifetime puzzles.
//
// A Task carries no transient schedule state; per-evaluation start and
// completion times live in schedule.Solution.TaskTimings instead, keyed by
// task id, so the canonical instance never needs per-evaluation cloning.
type Task struct {
	ID                int              `json:"id"`
	ComputationVolume float64          `json:"computationVolume"`
	MemoryRequirement float64          `json:"memoryRequirement"`
	PredecessorIDs    map[int]struct{} `json:"-"`
}

// MarshalJSON renders PredecessorIDs as a sorted array of task ids rather
// than the internal set representation.
func (t *Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskJSON{
		ID:                t.ID,
		ComputationVolume: t.ComputationVolume,
		MemoryRequirement: t.MemoryRequirement,
		PredecessorIDs:    t.Predecessors(),
	})
}

// UnmarshalJSON reconstructs PredecessorIDs from the serialized id array.
func (t *Task) UnmarshalJSON(data []byte) error {
	var aux taskJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID = aux.ID
	t.ComputationVolume = aux.ComputationVolume
	t.MemoryRequirement = aux.MemoryRequirement
	t.PredecessorIDs = make(map[int]struct{}, len(aux.PredecessorIDs))
	for _, id := range aux.PredecessorIDs {
		t.PredecessorIDs[id] = struct{}{}
	}
	return nil
}

type taskJSON struct {
	ID                int     `json:"id"`
	ComputationVolume float64 `json:"computationVolume"`
	MemoryRequirement float64 `json:"memoryRequirement"`
	PredecessorIDs    []int   `json:"predecessorIds"`
}

// NewTask builds a Task with an empty predecessor set.
func NewTask(id int, computationVolume, memoryRequirement float64) *Task {
	return &Task{
		ID:                id,
		ComputationVolume: computationVolume,
		MemoryRequirement: memoryRequirement,
		PredecessorIDs:    make(map[int]struct{}),
	}
}

// AddPredecessor records that t may not start before predecessorID completes.
func (t *Task) AddPredecessor(predecessorID int) {
	t.PredecessorIDs[predecessorID] = struct{}{}
}

// Predecessors returns the predecessor ids in ascending order.
func (t *Task) Predecessors() []int {
	ids := make([]int, 0, len(t.PredecessorIDs))
	for id := range t.PredecessorIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns a deep copy, including a private copy of the predecessor
// set.
func (t *Task) Clone() *Task {
	preds := make(map[int]struct{}, len(t.PredecessorIDs))
	for id := range t.PredecessorIDs {
		preds[id] = struct{}{}
	}
	return &Task{
		ID:                t.ID,
		ComputationVolume: t.ComputationVolume,
		MemoryRequirement: t.MemoryRequirement,
		PredecessorIDs:    preds,
	}
}
