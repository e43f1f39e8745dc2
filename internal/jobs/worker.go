package jobs

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrQueueFull is returned by Submit when the ingest queue is saturated.
var ErrQueueFull = errors.New("ingest queue is full")

// Job is one unit of background work, typically a bound ingest pipeline run.
type Job func(ctx context.Context)

// Worker executes submitted jobs off the request path, one at a time per
// worker goroutine, and periodically sweeps expired upload records.
type Worker struct {
	queue         chan Job
	tracker       *Tracker
	sweepInterval time.Duration
	concurrency   int
	stopChan      chan struct{}
	doneChan      chan struct{}
}

// NewWorker creates a Worker with the given queue depth and concurrency.
func NewWorker(tracker *Tracker, queueDepth, concurrency int, sweepInterval time.Duration) *Worker {
	if queueDepth <= 0 {
		queueDepth = 16
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &Worker{
		queue:         make(chan Job, queueDepth),
		tracker:       tracker,
		sweepInterval: sweepInterval,
		concurrency:   concurrency,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Submit queues a job for execution. It never blocks the caller: a full
// queue is reported as an error instead.
func (w *Worker) Submit(job Job) error {
	select {
	case w.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs the worker goroutines and the janitor until the context is
// cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	log.Printf("ingest worker started (concurrency: %d)", w.concurrency)

	workerDone := make(chan struct{})
	for i := 0; i < w.concurrency; i++ {
		go func() {
			defer func() { workerDone <- struct{}{} }()
			for {
				select {
				case <-ctx.Done():
					return
				case <-w.stopChan:
					return
				case job := <-w.queue:
					job(ctx)
				}
			}
		}()
	}

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

janitor:
	for {
		select {
		case <-ctx.Done():
			log.Println("ingest worker stopped: context cancelled")
			break janitor
		case <-w.stopChan:
			log.Println("ingest worker stopped: stop signal received")
			break janitor
		case <-ticker.C:
			if w.tracker != nil {
				if removed := w.tracker.Sweep(); removed > 0 {
					log.Printf("swept %d expired upload jobs", removed)
				}
			}
		}
	}

	for i := 0; i < w.concurrency; i++ {
		<-workerDone
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("ingest worker shutdown complete")
}
