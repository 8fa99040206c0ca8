package schedule

import (
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/parallel"
)

// ScheduleAll evaluates every assignment in candidates against instance in
// parallel, with no cross-interference between evaluations, and returns
// results in the same order as candidates.
func ScheduleAll(instance *model.ProblemInstance, candidates []model.Assignment) []Solution {
	results := make([]Solution, len(candidates))
	parallel.ForEachIndex(len(candidates), func(i int) {
		results[i] = Schedule(instance, candidates[i])
	}, func(i int, _ interface{}) {
		results[i] = Infeasible(candidates[i])
	})
	return results
}
