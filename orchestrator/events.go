package orchestrator

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/taskforge/taskforge/schedule"
)

// IterationEvent reports the outcome of one completed iteration or
// generation.
type IterationEvent struct {
	RunID          string
	Iteration      int
	BestSolution   schedule.Solution
	BestFitness    float64
	AverageFitness float64
}

// ProgressEvent is an IterationEvent plus a completion flag, emitted once
// per iteration so a UI collaborator can render a live progress bar.
type ProgressEvent struct {
	IterationEvent
	IsComplete bool
}

// CompletionEvent is emitted once, when a run or step-mode session completes
// or is stopped, provided at least one iteration has produced a best
// solution. A session that ends before its first iteration, or that fails
// with an error, emits none.
type CompletionEvent struct {
	RunID           string
	BestSolution    schedule.Solution
	TotalIterations int
	ComputationTime time.Duration
}

// Observer is the sink capability the orchestrator emits events to.
// Re-expressed from the source's multicast listener as an explicit
// interface: one producer, any number of consumers, no reliance on
// reference equality of bound handlers.
type Observer interface {
	OnIteration(IterationEvent)
	OnProgress(ProgressEvent)
	OnCompletion(CompletionEvent)
}

// multiObserver fans a single emission out to every subscribed Observer.
type multiObserver []Observer

func (m multiObserver) OnIteration(e IterationEvent) {
	for _, o := range m {
		o.OnIteration(e)
	}
}

func (m multiObserver) OnProgress(e ProgressEvent) {
	for _, o := range m {
		o.OnProgress(e)
	}
}

func (m multiObserver) OnCompletion(e CompletionEvent) {
	for _, o := range m {
		o.OnCompletion(e)
	}
}

// NilObserver discards every event. A session with no observers emits
// nothing at all, so it is never needed as a default.
type NilObserver struct{}

func (NilObserver) OnIteration(IterationEvent)   {}
func (NilObserver) OnProgress(ProgressEvent)     {}
func (NilObserver) OnCompletion(CompletionEvent) {}

// LoggingObserver logs every event at Debug (iteration/progress) or Info
// (completion) level via logrus.
type LoggingObserver struct {
	Log *log.Logger
}

// NewLoggingObserver builds a LoggingObserver against logrus's standard
// logger.
func NewLoggingObserver() LoggingObserver {
	return LoggingObserver{Log: log.StandardLogger()}
}

func (o LoggingObserver) OnIteration(e IterationEvent) {
	o.Log.WithFields(log.Fields{
		"runId":          e.RunID,
		"iteration":      e.Iteration,
		"bestFitness":    e.BestFitness,
		"averageFitness": e.AverageFitness,
	}).Debug("iteration completed")
}

func (o LoggingObserver) OnProgress(e ProgressEvent) {
	o.Log.WithFields(log.Fields{
		"runId":       e.RunID,
		"iteration":   e.Iteration,
		"bestFitness": e.BestFitness,
		"isComplete":  e.IsComplete,
	}).Debug("progress")
}

func (o LoggingObserver) OnCompletion(e CompletionEvent) {
	o.Log.WithFields(log.Fields{
		"runId":           e.RunID,
		"totalIterations": e.TotalIterations,
		"bestFitness":     e.BestSolution.Fitness,
		"computationTime": e.ComputationTime,
	}).Info("run completed")
}
