package model

import "testing"

func TestValidateDetectsCycle(t *testing.T) {
	inst := NewProblemInstance()
	a := NewTask(1, 10, 1)
	b := NewTask(2, 10, 1)
	a.AddPredecessor(2)
	b.AddPredecessor(1)
	inst.Tasks[1] = a
	inst.Tasks[2] = b

	err := inst.Validate()
	if err == nil {
		t.Fatal("expected cycle to be detected")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.CyclicTaskIDs) == 0 {
		t.Fatal("expected cyclic task ids to be populated")
	}
}

func TestValidateDetectsDanglingPredecessor(t *testing.T) {
	inst := NewProblemInstance()
	a := NewTask(1, 10, 1)
	a.AddPredecessor(99)
	inst.Tasks[1] = a

	err := inst.Validate()
	if err == nil {
		t.Fatal("expected dangling predecessor to be detected")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.DanglingPredecessor[1] != 99 {
		t.Fatalf("expected dangling predecessor 99 for task 1, got %v", verr.DanglingPredecessor)
	}
}

func TestValidateAcceptsChain(t *testing.T) {
	inst := NewProblemInstance()
	a := NewTask(1, 10, 1)
	b := NewTask(2, 20, 1)
	c := NewTask(3, 30, 1)
	b.AddPredecessor(1)
	c.AddPredecessor(2)
	inst.Tasks[1], inst.Tasks[2], inst.Tasks[3] = a, b, c

	if err := inst.Validate(); err != nil {
		t.Fatalf("expected valid chain, got %v", err)
	}
}

func TestValidateAcceptsForkJoin(t *testing.T) {
	inst := NewProblemInstance()
	a := NewTask(1, 10, 1)
	b := NewTask(2, 10, 1)
	c := NewTask(3, 10, 1)
	d := NewTask(4, 10, 1)
	b.AddPredecessor(1)
	c.AddPredecessor(1)
	d.AddPredecessor(2)
	d.AddPredecessor(3)
	for _, task := range []*Task{a, b, c, d} {
		inst.Tasks[task.ID] = task
	}

	if err := inst.Validate(); err != nil {
		t.Fatalf("expected valid fork/join DAG, got %v", err)
	}
}

func TestAssignmentCloneIsIndependent(t *testing.T) {
	a := Assignment{1: 1, 2: 2}
	clone := a.Clone()
	clone[1] = 99

	if a[1] != 1 {
		t.Fatalf("mutating clone affected original: %v", a)
	}
	if !a.Equal(Assignment{1: 1, 2: 2}) {
		t.Fatalf("original assignment changed: %v", a)
	}
}
