package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

type Job func(ctx context.Context) error

// WorkingPool runs submitted jobs on a fixed number of goroutines. Close stops
// intake; workers drain what is queued and exit.
type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job
	workerWg   sync.WaitGroup
	succeeded  atomic.Int64
	failed     atomic.Int64
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

func (p *WorkingPool) Start(ctx context.Context) {
	for i := range p.NumWorkers {
		p.workerWg.Add(1)
		go p.worker(ctx, i+1)
	}
}

func (p *WorkingPool) SubmitJob(job Job) {
	p.jobChan <- job
}

// Close stops intake and blocks until every worker has exited.
func (p *WorkingPool) Close() {
	close(p.jobChan)
	p.workerWg.Wait()
	slog.Info("[WorkingPool] All workers stopped", "succeeded", p.succeeded.Load(), "failed", p.failed.Load())
}

// Counts returns how many jobs succeeded and failed so far.
func (p *WorkingPool) Counts() (succeeded, failed int64) {
	return p.succeeded.Load(), p.failed.Load()
}

func (p *WorkingPool) worker(ctx context.Context, id int) {
	defer p.workerWg.Done()

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			if err := p.safeExecution(ctx, job, id); err != nil {
				p.failed.Add(1)
			} else {
				p.succeeded.Add(1)
			}

		case <-ctx.Done():
			slog.Warn("[WorkingPool] Context canceled, worker exiting", "worker", id)
			return
		}
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[WorkingPool] Panic recovered in job", "worker", workerID, "panic", r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	if err = job(ctx); err != nil {
		slog.Warn("[WorkingPool] Job failed", "worker", workerID, "error", err)
	}
	return err
}
