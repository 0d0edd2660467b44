package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
)

// Converter converts a code out of one standard. *mapper.Mapper implements it.
type Converter interface {
	Convert(from dxcode.Standard, code string) ([]string, error)
}

// ErrNoConverter is returned for every job of a pool without a Converter.
var ErrNoConverter = errors.New("no converter configured")

// Pool runs conversion jobs on a fixed set of goroutines.
type Pool struct {
	workers    int
	jobsChan   chan Job
	resultChan chan *JobResult
	conv       Converter
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsFailed    atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool creates a pool with the given number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewPool(conv Converter, workers int) *Pool {
	return NewPoolContext(context.Background(), conv, workers)
}

// NewPoolContext is like NewPool; cancelling ctx stops the workers.
func NewPoolContext(ctx context.Context, conv Converter, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		conv:       conv,
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues a job, blocking while the queue is full.
// It returns false once the pool is closed or cancelled.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// Results returns the channel results are delivered on.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close cancels outstanding work, discards pending results and waits for
// the workers to exit.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}

	p.cancel()
	close(p.jobsChan)

	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()

	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// CloseAndWait stops accepting jobs, lets the workers finish the queued ones
// and returns every result not yet read from Results().
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	start := time.Now()
	close(p.jobsChan)

	go func() {
		p.wg.Wait()
		close(p.resultChan)
	}()

	results := make([]*JobResult, 0)
	for r := range p.resultChan {
		results = append(results, r)
	}
	p.cancel()

	return &BatchResult{
		Results:       results,
		TotalJobs:     int(p.jobsSubmitted.Load()),
		CompletedJobs: int(p.jobsCompleted.Load()),
		FailedJobs:    int(p.jobsFailed.Load()),
		TotalDuration: time.Since(start),
	}
}

// PoolStats contains pool counters.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	JobsFailed    uint64
	AvgDuration   time.Duration
}

// Stats returns the current pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		JobsFailed:    p.jobsFailed.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		if p.ctx.Err() != nil {
			return
		}

		result := process(p.conv, job)
		p.jobsCompleted.Add(1)
		if result.Error != nil {
			p.jobsFailed.Add(1)
		}
		p.totalDuration.Add(uint64(result.Duration))

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func process(conv Converter, job Job) *JobResult {
	start := time.Now()
	result := &JobResult{ID: job.ID, From: job.From, Code: job.Code}

	if conv == nil {
		result.Error = ErrNoConverter
	} else {
		result.Result, result.Error = conv.Convert(job.From, job.Code)
	}

	result.Duration = time.Since(start)
	return result
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed)
}
