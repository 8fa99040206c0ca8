// Package persist implements a JSON export/import envelope: an exported
// solution bundles the problem instance, the solution, and its
// visualization projections into one camelCase document.
package persist

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
	"github.com/taskforge/taskforge/viz"
)

// VisualizationData is the chart-ready projection bundle persisted
// alongside a solution. Fields that are pure per-evaluation snapshots
// (TaskTimings, MachineTimings, FitnessHistory on Solution) could be
// recomputed from the solution alone, but are included here for debugging
// convenience.
type VisualizationData struct {
	Gantt       []viz.GanttBar           `json:"gantt"`
	Convergence []viz.ConvergencePoint   `json:"convergence"`
	Utilization []viz.MachineUtilization `json:"utilization"`
}

// Envelope is the top-level persisted document.
type Envelope struct {
	Instance      *model.ProblemInstance `json:"instance"`
	Solution      schedule.Solution      `json:"solution"`
	Visualization VisualizationData      `json:"visualization"`
}

// BuildVisualization derives the visualization bundle for a solution, for
// callers that want to export without recomputing projections themselves.
func BuildVisualization(instance *model.ProblemInstance, solution schedule.Solution) VisualizationData {
	return VisualizationData{
		Gantt:       viz.GanttChart(solution),
		Convergence: viz.ConvergenceChart(solution),
		Utilization: viz.UtilizationChart(instance, solution),
	}
}

// Export serializes instance, solution, and its visualization projections
// as a camelCase JSON envelope. An infeasible solution (makespan or fitness
// at +Inf) cannot be represented in JSON, so Export refuses it rather than
// silently truncating the value.
func Export(w io.Writer, instance *model.ProblemInstance, solution schedule.Solution) error {
	if !solution.Feasible() || math.IsInf(solution.Fitness, 1) {
		return fmt.Errorf("persist: cannot export an infeasible solution (makespan=%v fitness=%v)",
			solution.Makespan, solution.Fitness)
	}

	envelope := Envelope{
		Instance:      instance,
		Solution:      solution,
		Visualization: BuildVisualization(instance, solution),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("persist: export failed: %w", err)
	}
	return nil
}

// Import parses a JSON envelope previously written by Export. Visualization
// data is not validated against the solution; callers needing consistency
// should call BuildVisualization again rather than trust the persisted
// copy.
func Import(r io.Reader) (*model.ProblemInstance, schedule.Solution, VisualizationData, error) {
	var envelope Envelope
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&envelope); err != nil {
		return nil, schedule.Solution{}, VisualizationData{}, fmt.Errorf("persist: import failed: %w", err)
	}
	if envelope.Instance == nil {
		return nil, schedule.Solution{}, VisualizationData{}, fmt.Errorf("persist: import failed: missing instance")
	}
	return envelope.Instance, envelope.Solution, envelope.Visualization, nil
}
