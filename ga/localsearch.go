package ga

import (
	"math/rand"

	"github.com/taskforge/taskforge/candidate"
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/schedule"
)

// LocalSearch hill-climbs from start by repeatedly reassigning a single
// random task to a different random machine, keeping the move only if it
// strictly improves fitness. It is an explicit, opt-in post-processing
// step the caller runs on a
// driver's best solution after the search loop completes; it is never
// invoked automatically per generation, since a full instance evaluation
// per move would make every generation as expensive as the whole run.
func LocalSearch(instance *model.ProblemInstance, start schedule.Solution, maxIterations int, rng *rand.Rand) schedule.Solution {
	if !start.Feasible() || len(instance.Tasks) == 0 {
		return start
	}

	best := start
	current := start.Assignment.Clone()
	taskIDs := instance.TaskIDs()

	for i := 0; i < maxIterations; i++ {
		taskID := taskIDs[rng.Intn(len(taskIDs))]
		candidateAssignment := current.Clone()
		candidateAssignment[taskID] = candidate.OtherRandomMachine(instance, candidateAssignment[taskID], rng)

		sol := schedule.Schedule(instance, candidateAssignment)
		if sol.Fitness < best.Fitness {
			best = sol
			current = candidateAssignment
		}
	}

	return best
}
