// Package viz turns a schedule.Solution into chart-ready tables. Every
// function here is pure: given the same solution (and, where relevant,
// problem instance) it always returns the same table, so a UI layer can
// call these on every redraw without caching concerns.
package viz

import (
	"sort"

	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
)

// GanttBar is one task's timeline bar on a per-machine Gantt chart.
type GanttBar struct {
	MachineID      int     `json:"machineId"`
	TaskID         int     `json:"taskId"`
	StartTime      float64 `json:"startTime"`
	CompletionTime float64 `json:"completionTime"`
}

// GanttChart projects a solution's task timings into per-machine,
// start-time-ordered bars (I4: non-decreasing start-time order per
// machine).
func GanttChart(solution schedule.Solution) []GanttBar {
	bars := make([]GanttBar, 0, len(solution.TaskTimings))
	for _, timing := range solution.TaskTimings {
		bars = append(bars, GanttBar{
			MachineID:      timing.MachineID,
			TaskID:         timing.TaskID,
			StartTime:      timing.StartTime,
			CompletionTime: timing.CompletionTime,
		})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].MachineID != bars[j].MachineID {
			return bars[i].MachineID < bars[j].MachineID
		}
		if bars[i].StartTime != bars[j].StartTime {
			return bars[i].StartTime < bars[j].StartTime
		}
		return bars[i].TaskID < bars[j].TaskID
	})
	return bars
}

// ConvergencePoint is one sample on a fitness-over-iterations chart.
type ConvergencePoint struct {
	Iteration int     `json:"iteration"`
	Fitness   float64 `json:"fitness"`
}

// ConvergenceChart projects a solution's fitness history into an
// iteration-indexed series.
func ConvergenceChart(solution schedule.Solution) []ConvergencePoint {
	points := make([]ConvergencePoint, len(solution.FitnessHistory))
	for i, fitness := range solution.FitnessHistory {
		points[i] = ConvergencePoint{Iteration: i, Fitness: fitness}
	}
	return points
}

// MachineUtilization is one machine's row on a load-balance chart: how
// much of the makespan it spent busy, and how many tasks it ran.
type MachineUtilization struct {
	MachineID   int     `json:"machineId"`
	TaskCount   int     `json:"taskCount"`
	BusyTime    float64 `json:"busyTime"`
	Makespan    float64 `json:"makespan"`
	Utilization float64 `json:"utilization"` // BusyTime / Makespan, 0 if Makespan is 0
}

// UtilizationChart projects a solution's machine timings into a
// per-machine load summary. instance supplies the full machine set, so
// machines with zero assigned tasks still appear with Utilization 0.
func UtilizationChart(instance *model.ProblemInstance, solution schedule.Solution) []MachineUtilization {
	busyTime := map[int]float64{}
	taskCount := map[int]int{}
	for _, timing := range solution.TaskTimings {
		busyTime[timing.MachineID] += timing.CompletionTime - timing.StartTime
		taskCount[timing.MachineID]++
	}

	rows := make([]MachineUtilization, 0, len(instance.Machines))
	for _, machineID := range instance.MachineIDs() {
		row := MachineUtilization{
			MachineID: machineID,
			TaskCount: taskCount[machineID],
			BusyTime:  busyTime[machineID],
			Makespan:  solution.Makespan,
		}
		if solution.Makespan > 0 {
			row.Utilization = row.BusyTime / solution.Makespan
		}
		rows = append(rows, row)
	}
	return rows
}
