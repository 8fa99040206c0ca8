package candidate

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/taskforge/taskforge/model"
)

func TestRepairFixesHostableViolation(t *testing.T) {
	inst := model.NewProblemInstance()
	inst.Tasks[1] = model.NewTask(1, 10, 15)
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 5)  // too small
	inst.Machines[2] = model.NewVirtualMachine(2, 10, 20) // sufficient

	assignment := model.Assignment{1: 1}
	Repair(inst, assignment, rand.New(rand.NewSource(1)))

	if assignment[1] != 2 {
		t.Fatalf("expected task repaired onto machine 2, got %d", assignment[1])
	}
}

func TestRepairLeavesUnhostableTaskUnchanged(t *testing.T) {
	inst := model.NewProblemInstance()
	inst.Tasks[1] = model.NewTask(1, 10, 100)
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 5)

	assignment := model.Assignment{1: 1}
	Repair(inst, assignment, rand.New(rand.NewSource(1)))

	if assignment[1] != 1 {
		t.Fatalf("expected unhostable task left on its original machine, got %d", assignment[1])
	}
}

// P9: after repair, whenever any machine could host a task, the task is
// assigned to a machine that can host it.
func TestRepairInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("repaired assignment hosts every hostable task", prop.ForAll(
		func(taskCount, machineCount, seed int) bool {
			s := int64(seed)
			inst, err := model.GenerateRandomInstance(taskCount, machineCount, &s, model.DefaultGenerationConfig())
			if err != nil {
				return false
			}
			rng := rand.New(rand.NewSource(s))
			assignment := RandomAssignment(inst, rng)
			Repair(inst, assignment, rng)

			for _, taskID := range inst.TaskIDs() {
				task := inst.Tasks[taskID]
				anyHostable := false
				for _, m := range inst.Machines {
					if m.CanHost(task) {
						anyHostable = true
						break
					}
				}
				if !anyHostable {
					continue
				}
				assignedMachine := inst.Machines[assignment[taskID]]
				if assignedMachine == nil || !assignedMachine.CanHost(task) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 8),
		gen.IntRange(1, 1000000),
	))

	properties.TestingRun(t)
}
