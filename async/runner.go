// Package async provides tools for asynchronous callback processing using
// goroutines.
package async

// AsyncErrorResponseHandler is the callback invoked, on the goroutine that
// calls ProcessMessages, once the run it was registered for completes.
type AsyncErrorResponseHandler func(error)

// Runner spawns goroutines and associates a callback with each one's
// eventual error result, without blocking the caller.
//
// A goroutine has no way to return a value to its caller; Runner exists so
// a caller can launch work on a goroutine and still be told, without
// blocking, whether that work eventually succeeded or failed. The
// orchestrator uses exactly this to support a non-blocking Run: it launches
// a driver's iteration loop on a goroutine and is notified, via callback, of
// the final error once the loop exits, so a UI event loop that cannot
// afford to block on Run can instead drain the runner on its own tick.
//
//	runner := NewRunner()
//	runner.RunAsync(
//	    func() error { return driveToCompletion(d) },
//	    func(err error) { notifyCompletion(err) },
//	)
//	for runner.NumRunning() > 0 {
//	    runner.ProcessMessages()
//	}
//
// A Runner is not a concurrent structure and should only ever be accessed
// from the single goroutine that calls RunAsync, ProcessMessages, and
// NumRunning; this keeps callbacks running one at a time, on that goroutine.
type Runner struct {
	pending []pendingRun
}

// pendingRun pairs one in-flight goroutine's AsyncError with the callback
// to invoke once it completes.
type pendingRun struct {
	done *AsyncError
	cb   AsyncErrorResponseHandler
}

func NewRunner() Runner {
	return Runner{}
}

// NumRunning reports how many goroutines RunAsync has launched whose
// callback has not yet fired.
func (r *Runner) NumRunning() int {
	return len(r.pending)
}

// RunAsync launches f on a goroutine. cb is invoked with f's result the
// next time ProcessMessages runs after f returns.
func (r *Runner) RunAsync(f func() error, cb AsyncErrorResponseHandler) {
	done := newAsyncError()
	r.pending = append(r.pending, pendingRun{done, cb})
	go func() {
		done.SetValue(f())
	}()
}

// ProcessMessages invokes the callback of every run that has finished since
// the last call, synchronously on the calling goroutine, and drops it from
// the pending set.
func (r *Runner) ProcessMessages() {
	var stillPending []pendingRun
	for _, p := range r.pending {
		if ok, err := p.done.TryGetValue(); ok {
			p.cb(err)
		} else {
			stillPending = append(stillPending, p)
		}
	}
	r.pending = stillPending
}
