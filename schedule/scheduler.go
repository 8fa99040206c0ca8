package schedule

import (
	"math"
	"sort"

	"github.com/taskforge/taskforge/model"
)

// MissingReferencePenalty is the fixed penalty applied when an assignment
// references a machine that doesn't exist, or omits a task entirely. It is
// deliberately larger than any plausible memory penalty so it always
// dominates the fitness comparison.
const MissingReferencePenalty = 1e12

// Schedule deterministically evaluates assignment against instance: it
// computes the penalty for any hard-constraint violation, and — if none —
// runs list scheduling to produce a feasible schedule, its makespan, and
// per-task/per-machine timing snapshots.
//
// instance is never mutated; all scratch state is a private deep copy.
func Schedule(instance *model.ProblemInstance, assignment model.Assignment) Solution {
	if len(instance.Tasks) == 0 {
		return Solution{Assignment: assignment, Makespan: 0, TotalPenalty: 0, Fitness: 0}
	}

	totalPenalty := 0.0
	hardViolation := false

	for _, taskID := range instance.TaskIDs() {
		task := instance.Tasks[taskID]
		machineID, assigned := assignment[taskID]
		if !assigned {
			totalPenalty += MissingReferencePenalty
			hardViolation = true
			continue
		}
		machine, ok := instance.Machines[machineID]
		if !ok {
			totalPenalty += MissingReferencePenalty
			hardViolation = true
			continue
		}
		if task.MemoryRequirement > machine.AvailableMemory {
			totalPenalty += (task.MemoryRequirement - machine.AvailableMemory) * instance.MemoryPenaltyCoefficient
			hardViolation = true
		}
	}

	if hardViolation {
		return Solution{
			Assignment:   assignment,
			Makespan:     math.Inf(1),
			TotalPenalty: totalPenalty,
			Fitness:      math.Inf(1),
		}
	}

	return runListScheduling(instance, assignment, totalPenalty)
}

// runListScheduling is the main pass: tasks become ready wave by wave as
// their predecessors complete, and within a wave are scheduled in ascending
// task-id order for a deterministic tie-break (P3).
func runListScheduling(instance *model.ProblemInstance, assignment model.Assignment, totalPenalty float64) Solution {
	machines := make(map[int]*model.VirtualMachine, len(instance.Machines))
	for id, m := range instance.Machines {
		machines[id] = m.Clone()
	}

	remainingPreds := make(map[int]int, len(instance.Tasks))
	successors := make(map[int][]int)
	var ready []int
	for _, taskID := range instance.TaskIDs() {
		task := instance.Tasks[taskID]
		remainingPreds[taskID] = len(task.PredecessorIDs)
		if len(task.PredecessorIDs) == 0 {
			ready = append(ready, taskID)
		}
		for pred := range task.PredecessorIDs {
			successors[pred] = append(successors[pred], taskID)
		}
	}
	for pred := range successors {
		sort.Ints(successors[pred])
	}
	sort.Ints(ready)

	completionTime := make(map[int]float64, len(instance.Tasks))
	taskTimings := make(map[int]TaskTiming, len(instance.Tasks))
	machineOrder := make(map[int][]int, len(machines))
	maxCompletion := 0.0
	scheduledCount := 0

	for len(ready) > 0 {
		wave := ready
		ready = nil

		for _, taskID := range wave {
			task := instance.Tasks[taskID]
			machineID := assignment[taskID]
			machine := machines[machineID]

			predCompletion := 0.0
			for pred := range task.PredecessorIDs {
				if completionTime[pred] > predCompletion {
					predCompletion = completionTime[pred]
				}
			}

			startTime := machine.LastCompletionTime
			if predCompletion > startTime {
				startTime = predCompletion
			}

			execTime := math.Inf(1)
			if machine.Performance > 0 {
				execTime = task.ComputationVolume / machine.Performance
			}
			finish := startTime + execTime

			machine.LastCompletionTime = finish
			completionTime[taskID] = finish
			taskTimings[taskID] = TaskTiming{
				TaskID:         taskID,
				MachineID:      machineID,
				StartTime:      startTime,
				CompletionTime: finish,
			}
			machineOrder[machineID] = append(machineOrder[machineID], taskID)
			scheduledCount++
			if finish > maxCompletion {
				maxCompletion = finish
			}

			for _, succ := range successors[taskID] {
				remainingPreds[succ]--
				if remainingPreds[succ] == 0 {
					ready = append(ready, succ)
				}
			}
		}
		sort.Ints(ready)
	}

	machineTimings := make(map[int]MachineTiming, len(machines))
	for id := range instance.Machines {
		machineTimings[id] = MachineTiming{MachineID: id, TaskIDs: machineOrder[id]}
	}

	if scheduledCount != len(instance.Tasks) {
		// A non-DAG slipped past Validate(); treat as a hard violation rather
		// than spin forever.
		return Solution{
			Assignment:   assignment,
			Makespan:     math.Inf(1),
			TotalPenalty: totalPenalty + MissingReferencePenalty,
			Fitness:      math.Inf(1),
		}
	}

	return Solution{
		Assignment:     assignment,
		Makespan:       maxCompletion,
		TotalPenalty:   totalPenalty,
		Fitness:        maxCompletion + totalPenalty,
		TaskTimings:    taskTimings,
		MachineTimings: machineTimings,
	}
}
