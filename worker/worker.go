// Package worker runs background jobs off the tick loop, such as hub
// snapshot broadcasts.
package worker

import (
	"runtime"

	"github.com/getsentry/sentry-go"
)

var workerQueue = make(chan func(), runtime.NumCPU()*4)

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker()
	}
}

func worker() {
	defer sentry.Recover()

	for {
		f, ok := <-workerQueue
		if !ok {
			return
		}

		f()
	}
}

// Submit queues f for execution off the tick loop. It blocks when the queue
// is saturated, so the tick loop should only submit fire-and-forget work.
func Submit(f func()) {
	workerQueue <- f
}
