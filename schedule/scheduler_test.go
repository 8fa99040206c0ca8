package schedule

import (
	"math"
	"testing"

	"github.com/luci/go-render/render"
	"github.com/taskforge/taskforge/model"
)

func singleTaskInstance(volume, memory, performance, machineMemory float64) *model.ProblemInstance {
	inst := model.NewProblemInstance()
	inst.Tasks[1] = model.NewTask(1, volume, memory)
	inst.Machines[1] = model.NewVirtualMachine(1, performance, machineMemory)
	return inst
}

// S1: 1 task (volume 10, memory 5), 1 machine (performance 10, memory 10).
func TestScenarioSingleTask(t *testing.T) {
	inst := singleTaskInstance(10, 5, 10, 10)
	sol := Schedule(inst, model.Assignment{1: 1})

	if sol.Makespan != 1.0 {
		t.Fatalf("expected makespan 1.0, got %v\n%s", sol.Makespan, render.Render(sol))
	}
	if sol.TotalPenalty != 0 {
		t.Fatalf("expected zero penalty, got %v", sol.TotalPenalty)
	}
}

// S2: chain A->B->C, volumes (10,20,30), memory 1 each; one machine (perf 10, mem 10).
func TestScenarioChainPrecedence(t *testing.T) {
	inst := model.NewProblemInstance()
	a := model.NewTask(1, 10, 1)
	b := model.NewTask(2, 20, 1)
	c := model.NewTask(3, 30, 1)
	b.AddPredecessor(1)
	c.AddPredecessor(2)
	inst.Tasks[1], inst.Tasks[2], inst.Tasks[3] = a, b, c
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 10)

	sol := Schedule(inst, model.Assignment{1: 1, 2: 1, 3: 1})

	wantStart := map[int]float64{1: 0, 2: 1, 3: 3}
	for id, want := range wantStart {
		got := sol.TaskTimings[id].StartTime
		if got != want {
			t.Fatalf("task %d: expected start %v, got %v\n%s", id, want, got, render.Render(sol))
		}
	}
	if sol.Makespan != 6.0 {
		t.Fatalf("expected makespan 6.0, got %v", sol.Makespan)
	}
}

// S3: two machines, two independent tasks, assignment {A->1, B->2}.
func TestScenarioTwoIndependentMachines(t *testing.T) {
	inst := model.NewProblemInstance()
	inst.Tasks[1] = model.NewTask(1, 10, 1)
	inst.Tasks[2] = model.NewTask(2, 10, 1)
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 10)
	inst.Machines[2] = model.NewVirtualMachine(2, 5, 10)

	sol := Schedule(inst, model.Assignment{1: 1, 2: 2})

	if sol.Makespan != 2.0 {
		t.Fatalf("expected makespan 2.0, got %v\n%s", sol.Makespan, render.Render(sol))
	}
}

// S4: memory violation.
func TestScenarioMemoryViolation(t *testing.T) {
	inst := model.NewProblemInstance()
	inst.Tasks[1] = model.NewTask(1, 10, 100)
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 1)
	inst.MemoryPenaltyCoefficient = 1000

	sol := Schedule(inst, model.Assignment{1: 1})

	if !math.IsInf(sol.Makespan, 1) {
		t.Fatalf("expected +Inf makespan, got %v", sol.Makespan)
	}
	if sol.TotalPenalty < 99000 {
		t.Fatalf("expected penalty >= 99000, got %v", sol.TotalPenalty)
	}
	if !math.IsInf(sol.Fitness, 1) {
		t.Fatalf("expected +Inf fitness, got %v", sol.Fitness)
	}
}

// S5: fork/join A->{B,C}->D.
func TestScenarioForkJoin(t *testing.T) {
	inst := model.NewProblemInstance()
	a := model.NewTask(1, 10, 1)
	b := model.NewTask(2, 10, 1)
	c := model.NewTask(3, 10, 1)
	d := model.NewTask(4, 10, 1)
	b.AddPredecessor(1)
	c.AddPredecessor(1)
	d.AddPredecessor(2)
	d.AddPredecessor(3)
	inst.Tasks[1], inst.Tasks[2], inst.Tasks[3], inst.Tasks[4] = a, b, c, d
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 10)
	inst.Machines[2] = model.NewVirtualMachine(2, 10, 10)

	sol := Schedule(inst, model.Assignment{1: 1, 2: 1, 3: 2, 4: 1})

	if sol.TaskTimings[1].StartTime != 0 {
		t.Fatalf("expected start(A)=0, got %v", sol.TaskTimings[1].StartTime)
	}
	if sol.TaskTimings[2].StartTime < 1 || sol.TaskTimings[3].StartTime < 1 {
		t.Fatalf("expected start(B),start(C) >= 1, got %v %v", sol.TaskTimings[2].StartTime, sol.TaskTimings[3].StartTime)
	}
	if sol.TaskTimings[4].StartTime < 2 {
		t.Fatalf("expected start(D) >= 2, got %v", sol.TaskTimings[4].StartTime)
	}
	if sol.Makespan != 3.0 {
		t.Fatalf("expected makespan 3.0, got %v\n%s", sol.Makespan, render.Render(sol))
	}
}

func TestEmptyInstanceHasZeroFitness(t *testing.T) {
	inst := model.NewProblemInstance()
	sol := Schedule(inst, model.Assignment{})
	if sol.Makespan != 0 || sol.TotalPenalty != 0 || sol.Fitness != 0 {
		t.Fatalf("expected zeroed solution for empty instance, got %+v", sol)
	}
}

func TestMissingMachineIsHardViolation(t *testing.T) {
	inst := singleTaskInstance(10, 1, 10, 10)
	sol := Schedule(inst, model.Assignment{1: 99})
	if !math.IsInf(sol.Makespan, 1) {
		t.Fatalf("expected hard violation for missing machine, got %+v", sol)
	}
}

func TestMissingAssignmentIsHardViolation(t *testing.T) {
	inst := singleTaskInstance(10, 1, 10, 10)
	sol := Schedule(inst, model.Assignment{})
	if !math.IsInf(sol.Makespan, 1) {
		t.Fatalf("expected hard violation for missing task assignment, got %+v", sol)
	}
}

// P3: determinism.
func TestScheduleIsDeterministic(t *testing.T) {
	seed := int64(7)
	inst, err := model.GenerateRandomInstance(30, 5, &seed, model.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assignment := model.Assignment{}
	for i, id := range inst.TaskIDs() {
		assignment[id] = inst.MachineIDs()[i%len(inst.MachineIDs())]
	}

	first := Schedule(inst, assignment)
	second := Schedule(inst, assignment)

	if first.Makespan != second.Makespan || first.TotalPenalty != second.TotalPenalty {
		t.Fatalf("expected identical repeated evaluation, got %+v vs %+v", first, second)
	}
	for id, timing := range first.TaskTimings {
		if second.TaskTimings[id] != timing {
			t.Fatalf("task %d timing differs between identical runs", id)
		}
	}
}

// P4: penalty monotonicity.
func TestPenaltyIncreasesWithMemoryShortfall(t *testing.T) {
	inst := model.NewProblemInstance()
	inst.Tasks[1] = model.NewTask(1, 10, 5)
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 10)
	inst.MemoryPenaltyCoefficient = 1000

	before := Schedule(inst, model.Assignment{1: 1})
	inst.Tasks[1].MemoryRequirement = 50
	after := Schedule(inst, model.Assignment{1: 1})

	if !(after.TotalPenalty > before.TotalPenalty) {
		t.Fatalf("expected penalty to strictly increase, before=%v after=%v", before.TotalPenalty, after.TotalPenalty)
	}
}

func TestScheduleAllPreservesOrder(t *testing.T) {
	inst := singleTaskInstance(10, 1, 10, 10)
	candidates := []model.Assignment{
		{1: 1},
		{}, // forces a hard violation in slot 1
		{1: 1},
	}
	results := ScheduleAll(inst, candidates)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Feasible() != true {
		t.Fatalf("expected slot 0 feasible")
	}
	if results[1].Feasible() {
		t.Fatalf("expected slot 1 infeasible")
	}
	if results[2].Feasible() != true {
		t.Fatalf("expected slot 2 feasible")
	}
}
