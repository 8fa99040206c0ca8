// Package parallel fans independent, per-index work out across a worker
// pool and waits for all of it to finish.
//
// This is deliberately not async.Runner's callback-draining mailbox: the
// scheduler's batch evaluation and the drivers' per-candidate update passes
// need "evaluate everything, then merge" semantics, not "drain whatever
// callbacks have completed so far". Each worker writes into its own slot of
// a pre-sized output, so ordering falls out for free and no append-under-lock
// is needed.
package parallel

import (
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Workers returns the number of goroutines ForEachIndex will use for n units
// of work: never more than there are units, never more than GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return 0
	}
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// ForEachIndex runs fn(i) for every i in [0, n) across a worker pool, and
// blocks until all calls have returned. A panic inside fn is recovered and
// logged rather than crashing the caller; onPanic, if non-nil, is invoked
// with the offending index and the recovered value so the caller can write
// a sentinel result for that slot.
func ForEachIndex(n int, fn func(i int), onPanic func(i int, recovered interface{})) {
	if n <= 0 {
		return
	}
	indices := make(chan int, n)
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	workers := Workers(n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				runOne(i, fn, onPanic)
			}
		}()
	}
	wg.Wait()
}

func runOne(i int, fn func(i int), onPanic func(i int, recovered interface{})) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("index", i).Errorf("recovered panic in parallel work item: %v", r)
			if onPanic != nil {
				onPanic(i, r)
			}
		}
	}()
	fn(i)
}
