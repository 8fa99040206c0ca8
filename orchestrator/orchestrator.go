// Package orchestrator drives a search to completion: it owns one driver
// capability at a time (PSO or GA), advances it iteration by iteration or
// generation by generation, and emits progress/completion events to any
// number of observers.
package orchestrator

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/nu7hatch/gouuid"

	"github.com/taskforge/taskforge/async"
	"github.com/taskforge/taskforge/ga"
	"github.com/taskforge/taskforge/model"
	"github.com/taskforge/taskforge/pso"
	"github.com/taskforge/taskforge/schedule"
	"github.com/taskforge/taskforge/stats"
)

// Status is the orchestrator's lifecycle state: Idle -> Ready -> Running ->
// {Completed, Stopped, Error} -> Ready via reset.
type Status int

const (
	StatusIdle Status = iota
	StatusReady
	StatusRunning
	StatusCompleted
	StatusStopped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusCompleted:
		return "Completed"
	case StatusStopped:
		return "Stopped"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// RunConfig configures one Run session.
type RunConfig struct {
	// Yield, if set, is called between iterations so a UI collaborator can
	// process events. Defaults to runtime.Gosched.
	Yield func()
}

// Orchestrator is single-threaded cooperative: exactly one iteration
// advances at a time. Stop may be called from another goroutine, so status
// and driver access are guarded by mu.
type Orchestrator struct {
	mu sync.Mutex

	status   Status
	instance *model.ProblemInstance

	kind      AlgorithmKind
	psoConfig pso.Config
	gaConfig  ga.Config

	driver    Driver
	stepMode  bool
	observers multiObserver
	runID     string

	totalIterations int
	startedAt       time.Time
	best            *schedule.Solution
	lastErr         *Error

	stat stats.StatsReceiver
}

// New builds an Idle orchestrator with PSO and GA defaults loaded.
func New(stat stats.StatsReceiver) *Orchestrator {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	return &Orchestrator{
		status:    StatusIdle,
		kind:      PSO,
		psoConfig: pso.DefaultConfig(),
		gaConfig:  ga.DefaultConfig(),
		stat:      stat.Scope("orchestrator"),
	}
}

// InitializeRandomInstance generates a fresh ProblemInstance and moves the
// orchestrator to Ready, discarding any prior run state.
func (o *Orchestrator) InitializeRandomInstance(taskCount, machineCount int, seed *int64, genConfig *model.GenerationConfig) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cfg := model.DefaultGenerationConfig()
	if genConfig != nil {
		cfg = *genConfig
	}

	instance, err := model.GenerateRandomInstance(taskCount, machineCount, seed, cfg)
	if err != nil {
		kind := InvalidConfig
		if _, ok := err.(*model.ValidationError); ok {
			kind = InvalidInstance
		}
		o.status = StatusError
		o.lastErr = newError(kind, err)
		return o.lastErr
	}

	o.instance = instance
	o.driver = nil
	o.stepMode = false
	o.totalIterations = 0
	o.best = nil
	o.lastErr = nil
	o.status = StatusReady
	return nil
}

// SetAlgorithmKind selects which driver Run/StartStepMode will construct.
func (o *Orchestrator) SetAlgorithmKind(kind AlgorithmKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kind = kind
}

// SetPSOConfig validates and stores the PSO configuration.
func (o *Orchestrator) SetPSOConfig(cfg pso.Config) error {
	if err := cfg.Validate(); err != nil {
		return newError(InvalidConfig, err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.psoConfig = cfg
	return nil
}

// SetGAConfig validates and stores the GA configuration.
func (o *Orchestrator) SetGAConfig(cfg ga.Config) error {
	if err := cfg.Validate(); err != nil {
		return newError(InvalidConfig, err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gaConfig = cfg
	return nil
}

// Status reports the current lifecycle state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Instance returns the current problem instance, or nil if none is set.
func (o *Orchestrator) Instance() *model.ProblemInstance {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.instance
}

// CurrentSolution returns the best solution found so far, or nil.
func (o *Orchestrator) CurrentSolution() *schedule.Solution {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.best
}

// CanStep reports whether Step may be called right now.
func (o *Orchestrator) CanStep() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status == StatusRunning && o.stepMode && o.driver != nil && !o.driver.IsComplete()
}

func (o *Orchestrator) newDriver() (Driver, error) {
	switch o.kind {
	case GA:
		d, err := ga.NewDriver(o.instance, o.gaConfig, o.stat)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		d, err := pso.NewDriver(o.instance, o.psoConfig, o.stat)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Run repeatedly steps the driver until it completes or ctx is cancelled,
// emitting an IterationEvent and a ProgressEvent per iteration and a single
// CompletionEvent at the end.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig, observers ...Observer) error {
	yield := config.Yield
	if yield == nil {
		yield = runtime.Gosched
	}

	if err := o.beginRun(false, observers); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			o.finish(StatusStopped)
			return nil
		}
		if o.driver.IsComplete() {
			break
		}
		if err := o.advance(); err != nil {
			o.mu.Lock()
			o.status = StatusError
			o.lastErr = newError(EvaluationFailed, err)
			o.mu.Unlock()
			return o.lastErr
		}
		yield()
	}

	o.finish(StatusCompleted)
	return nil
}

// RunAsync launches Run on a goroutine and returns an async.Runner the
// caller can poll without blocking: NumRunning reports whether the run is
// still in flight, and ProcessMessages invokes cb with Run's final error
// once it finishes. A UI event loop that cannot afford to block on Run
// directly drains the runner on its own tick instead.
func (o *Orchestrator) RunAsync(ctx context.Context, config RunConfig, cb func(error), observers ...Observer) *async.Runner {
	runner := async.NewRunner()
	runner.RunAsync(func() error {
		return o.Run(ctx, config, observers...)
	}, cb)
	return &runner
}

// StartStepMode prepares a driver for explicit single-step advancement via
// Step.
func (o *Orchestrator) StartStepMode(observers ...Observer) error {
	return o.beginRun(true, observers)
}

// Step advances the driver by exactly one iteration. It requires
// StartStepMode to have been called and CanStep to be true.
func (o *Orchestrator) Step() error {
	o.mu.Lock()
	if o.status != StatusRunning || !o.stepMode || o.driver == nil {
		o.mu.Unlock()
		return newError(NotInitialized, nil)
	}
	o.mu.Unlock()

	if err := o.advance(); err != nil {
		o.mu.Lock()
		o.status = StatusError
		o.lastErr = newError(EvaluationFailed, err)
		o.mu.Unlock()
		return o.lastErr
	}

	o.mu.Lock()
	complete := o.driver.IsComplete()
	o.mu.Unlock()
	if complete {
		o.finish(StatusCompleted)
	}
	return nil
}

// Stop requests cancellation. In run mode this is observed at the next
// iteration boundary; in step mode the driver is torn down immediately.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.status != StatusRunning {
		o.mu.Unlock()
		return
	}
	if o.driver != nil {
		o.driver.Stop()
	}
	stepMode := o.stepMode
	o.mu.Unlock()

	if stepMode {
		o.finish(StatusStopped)
	}
}

// Reset discards all per-run state and returns to Ready (if an instance is
// set) or Idle otherwise.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.driver = nil
	o.stepMode = false
	o.totalIterations = 0
	o.best = nil
	o.lastErr = nil
	if o.instance != nil {
		o.status = StatusReady
	} else {
		o.status = StatusIdle
	}
}

func (o *Orchestrator) beginRun(stepMode bool, observers []Observer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.instance == nil {
		o.status = StatusError
		o.lastErr = newError(NotInitialized, nil)
		return o.lastErr
	}
	if o.status == StatusRunning {
		o.status = StatusError
		o.lastErr = newError(AlreadyRunning, nil)
		return o.lastErr
	}

	driver, err := o.newDriver()
	if err != nil {
		o.status = StatusError
		o.lastErr = newError(InvalidConfig, err)
		return o.lastErr
	}

	o.driver = driver
	o.stepMode = stepMode
	o.observers = multiObserver(observers)
	o.runID = newRunID()
	o.totalIterations = 0
	o.startedAt = stats.Time.Now()
	o.status = StatusRunning
	return nil
}

// newRunID mints a fresh identifier for one Run/StartStepMode session, so a
// collaborator watching several orchestrators can correlate events emitted
// by the same session. Falls back to an empty string if the platform's
// entropy source is unavailable; correlation degrades gracefully rather than
// failing the run.
func newRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

// advance steps the driver once and emits IterationEvent/ProgressEvent to
// the subscribed observers.
func (o *Orchestrator) advance() error {
	o.mu.Lock()
	driver := o.driver
	obs := o.observers
	runID := o.runID
	o.mu.Unlock()

	if err := driver.Step(); err != nil {
		return err
	}

	o.mu.Lock()
	o.totalIterations++
	best := driver.BestSolution()
	if best != nil {
		o.best = best
	}
	iteration := o.totalIterations
	complete := driver.IsComplete()
	o.mu.Unlock()

	if len(obs) == 0 || best == nil {
		return nil
	}
	average := best.Fitness
	if reporter, ok := driver.(averageReporter); ok {
		average = reporter.LatestAverageFitness()
	}
	event := IterationEvent{
		RunID:          runID,
		Iteration:      iteration,
		BestSolution:   *best,
		BestFitness:    best.Fitness,
		AverageFitness: average,
	}
	obs.OnIteration(event)
	obs.OnProgress(ProgressEvent{IterationEvent: event, IsComplete: complete})
	return nil
}

func (o *Orchestrator) finish(status Status) {
	o.mu.Lock()
	o.status = status
	best := o.best
	total := o.totalIterations
	elapsed := stats.Time.Now().Sub(o.startedAt)
	obs := o.observers
	runID := o.runID
	o.mu.Unlock()

	if len(obs) == 0 || best == nil {
		return
	}
	obs.OnCompletion(CompletionEvent{
		RunID:           runID,
		BestSolution:    *best,
		TotalIterations: total,
		ComputationTime: elapsed,
	})
}
