// Package candidate holds the representation and repair operator shared by
// both search drivers. Sharing one repair implementation keeps PSO's and
// GA's notion of "a feasible reassignment" from drifting apart.
package candidate

import (
	"math/rand"
	"sort"

	"github.com/taskforge/taskforge/model"
)

// Repair rewrites assignment in place: every task whose machine lacks
// sufficient memory is reassigned to a uniformly random machine drawn from
// the set of machines that can host it. If no machine can host a task, it
// is left as-is and the evaluator's penalty will reflect the violation.
// Repair is deterministic given rng.
func Repair(instance *model.ProblemInstance, assignment model.Assignment, rng *rand.Rand) {
	machineIDs := instance.MachineIDs()

	for _, taskID := range instance.TaskIDs() {
		task := instance.Tasks[taskID]
		currentMachineID, ok := assignment[taskID]
		var current *model.VirtualMachine
		if ok {
			current = instance.Machines[currentMachineID]
		}

		if current != nil && current.CanHost(task) {
			continue
		}

		feasible := hostsFor(instance, task, machineIDs)
		if len(feasible) == 0 {
			if !ok {
				// No assignment and no feasible machine: fall back to any
				// machine so the assignment stays total, the penalty path
				// will still flag it.
				if len(machineIDs) > 0 {
					assignment[taskID] = machineIDs[rng.Intn(len(machineIDs))]
				}
			}
			continue
		}
		assignment[taskID] = feasible[rng.Intn(len(feasible))]
	}
}

func hostsFor(instance *model.ProblemInstance, task *model.Task, machineIDs []int) []int {
	feasible := make([]int, 0, len(machineIDs))
	for _, id := range machineIDs {
		if instance.Machines[id].CanHost(task) {
			feasible = append(feasible, id)
		}
	}
	sort.Ints(feasible)
	return feasible
}

// RandomAssignment builds a uniformly random (pre-repair) assignment: every
// task gets a uniformly random machine id. Used by both drivers to seed a
// fresh candidate.
func RandomAssignment(instance *model.ProblemInstance, rng *rand.Rand) model.Assignment {
	machineIDs := instance.MachineIDs()
	assignment := make(model.Assignment, len(instance.Tasks))
	for _, taskID := range instance.TaskIDs() {
		assignment[taskID] = machineIDs[rng.Intn(len(machineIDs))]
	}
	return assignment
}

// OtherRandomMachine draws a uniformly random machine id different from
// exclude, if more than one machine exists; otherwise it returns exclude
// unchanged.
func OtherRandomMachine(instance *model.ProblemInstance, exclude int, rng *rand.Rand) int {
	machineIDs := instance.MachineIDs()
	if len(machineIDs) <= 1 {
		return exclude
	}
	for {
		candidate := machineIDs[rng.Intn(len(machineIDs))]
		if candidate != exclude {
			return candidate
		}
	}
}
