package model

// VirtualMachine is a compute resource: Performance is work units processed
// per time unit, AvailableMemory bounds which tasks it can legally host.
//
// LastCompletionTime is transient, populated per schedule evaluation on a
// private Clone(); the canonical instance is never mutated.
type VirtualMachine struct {
	ID              int     `json:"id"`
	Performance     float64 `json:"performance"`
	AvailableMemory float64 `json:"availableMemory"`

	LastCompletionTime float64 `json:"-"`
}

// NewVirtualMachine builds a VirtualMachine with no assigned work.
func NewVirtualMachine(id int, performance, availableMemory float64) *VirtualMachine {
	return &VirtualMachine{ID: id, Performance: performance, AvailableMemory: availableMemory}
}

// Clone returns a deep copy with transient schedule state reset.
func (m *VirtualMachine) Clone() *VirtualMachine {
	return &VirtualMachine{
		ID:              m.ID,
		Performance:     m.Performance,
		AvailableMemory: m.AvailableMemory,
	}
}

// CanHost reports whether this machine has sufficient memory for task t.
func (m *VirtualMachine) CanHost(t *Task) bool {
	return t.MemoryRequirement <= m.AvailableMemory
}
