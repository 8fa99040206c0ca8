package model

import (
	"fmt"
	"math/rand"
	"time"
)

// Range is an inclusive real-valued interval used to draw generated
// instance attributes from.
type Range struct {
	Min float64
	Max float64
}

func (r Range) valid() bool { return r.Min <= r.Max }

func (r Range) sample(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// GenerationConfig bounds the random-instance generator.
type GenerationConfig struct {
	ComputationVolume Range
	MemoryRequirement Range
	MaxPredecessors   int
	MachinePerformance Range
	MachineMemory      Range
}

// DefaultGenerationConfig returns reasonable default ranges for a random
// instance.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		ComputationVolume:  Range{10, 100},
		MemoryRequirement:  Range{1, 20},
		MaxPredecessors:    3,
		MachinePerformance: Range{5, 25},
		MachineMemory:      Range{10, 30},
	}
}

// Validate rejects an inverted range or a negative predecessor bound before
// generation begins.
func (c GenerationConfig) Validate() error {
	for name, r := range map[string]Range{
		"computationVolume":  c.ComputationVolume,
		"memoryRequirement":  c.MemoryRequirement,
		"machinePerformance": c.MachinePerformance,
		"machineMemory":      c.MachineMemory,
	} {
		if !r.valid() {
			return fmt.Errorf("generation config: range %s has Min > Max", name)
		}
	}
	if c.MaxPredecessors < 0 {
		return fmt.Errorf("generation config: MaxPredecessors must be >= 0")
	}
	return nil
}

// GenerateRandomInstance builds a ProblemInstance with taskCount tasks and
// machineCount machines, drawing attributes from cfg's ranges. Task i
// (1-indexed) may only depend on tasks [1, i-1], which guarantees
// acyclicity by construction — Validate() is still run before returning as
// a defense against a future generator bug.
func GenerateRandomInstance(taskCount, machineCount int, seed *int64, cfg GenerationConfig) (*ProblemInstance, error) {
	if taskCount < 1 {
		return nil, fmt.Errorf("taskCount must be >= 1, got %d", taskCount)
	}
	if machineCount < 1 {
		return nil, fmt.Errorf("machineCount must be >= 1, got %d", machineCount)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := NewSeededRand(seed)

	inst := NewProblemInstance()
	for i := 1; i <= taskCount; i++ {
		t := NewTask(i, cfg.ComputationVolume.sample(rng), cfg.MemoryRequirement.sample(rng))

		maxPreds := cfg.MaxPredecessors
		if i-1 < maxPreds {
			maxPreds = i - 1
		}
		if maxPreds > 0 {
			numPreds := rng.Intn(maxPreds + 1)
			for len(t.PredecessorIDs) < numPreds {
				t.AddPredecessor(1 + rng.Intn(i-1))
			}
		}
		inst.Tasks[i] = t
	}

	for i := 1; i <= machineCount; i++ {
		inst.Machines[i] = NewVirtualMachine(i, cfg.MachinePerformance.sample(rng), cfg.MachineMemory.sample(rng))
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// NewSeededRand returns a *rand.Rand seeded from seed, or from the current
// time if seed is nil.
func NewSeededRand(seed *int64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(*seed))
}
