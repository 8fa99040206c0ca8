package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
)

func chainInstance() *model.ProblemInstance {
	inst := model.NewProblemInstance()
	a := model.NewTask(1, 10, 1)
	b := model.NewTask(2, 20, 1)
	b.AddPredecessor(1)
	inst.Tasks[1], inst.Tasks[2] = a, b
	inst.Machines[1] = model.NewVirtualMachine(1, 10, 10)
	return inst
}

// P5: deserialize(serialize(solution)) equals solution modulo transient
// snapshot fields (fitness history, per-task/per-machine timing maps are
// reconstructible, not required to round-trip byte-for-byte).
func TestExportImportRoundTrips(t *testing.T) {
	inst := chainInstance()
	sol := schedule.Schedule(inst, model.Assignment{1: 1, 2: 1})

	var buf bytes.Buffer
	if err := Export(&buf, inst, sol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotInstance, gotSolution, gotViz, err := Import(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(inst, gotInstance); diff != "" {
		t.Fatalf("instance mismatch after round-trip (-want +got):\n%s", diff)
	}
	if gotSolution.Makespan != sol.Makespan || gotSolution.TotalPenalty != sol.TotalPenalty || gotSolution.Fitness != sol.Fitness {
		t.Fatalf("solution scalar fields mismatch: want %+v got %+v", sol, gotSolution)
	}
	if !gotSolution.Assignment.Equal(sol.Assignment) {
		t.Fatalf("assignment mismatch: want %v got %v", sol.Assignment, gotSolution.Assignment)
	}
	if len(gotViz.Gantt) != len(sol.TaskTimings) {
		t.Fatalf("expected gantt row per task, got %d rows for %d tasks", len(gotViz.Gantt), len(sol.TaskTimings))
	}
}

func TestExportRejectsInfeasibleSolution(t *testing.T) {
	inst := chainInstance()
	sol := schedule.Schedule(inst, model.Assignment{1: 1}) // task 2 unassigned

	var buf bytes.Buffer
	if err := Export(&buf, inst, sol); err == nil {
		t.Fatalf("expected an error exporting an infeasible solution")
	}
}

func TestImportRejectsMissingInstance(t *testing.T) {
	_, _, _, err := Import(strings.NewReader(`{"solution": {}}`))
	if err == nil {
		t.Fatalf("expected an error importing a document with no instance")
	}
}

func TestEnvelopeUsesCamelCaseFieldNames(t *testing.T) {
	inst := chainInstance()
	sol := schedule.Schedule(inst, model.Assignment{1: 1, 2: 1})

	var buf bytes.Buffer
	if err := Export(&buf, inst, sol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := buf.String()
	for _, key := range []string{`"instance"`, `"solution"`, `"visualization"`, `"makespan"`, `"memoryRequirement"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("expected exported JSON to contain key %s, got:\n%s", key, body)
		}
	}
}
