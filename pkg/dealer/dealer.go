// Package dealer runs blocking jobs (disk I/O mostly) on a bounded
// number of goroutines, either as a fixed worker pool or behind a semaphore.
package dealer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Strategy Default is Semaphore
type Strategy int

const (
	Semaphore Strategy = iota
	WorkerPool
)

var ErrNotStarted = errors.New("dealer is not running")

type Dealer struct {
	sem      chan struct{}
	jobq     chan *Job
	logger   *zap.SugaredLogger
	wg       *sync.WaitGroup
	strategy Strategy
	// Guards jobq from sends after close
	mu *sync.RWMutex
	// 0 - stopped
	// 1 - started
	started    int32
	maxWorkers int
}

func New(logger *zap.SugaredLogger, maxWorkers int) *Dealer {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Dealer{
		started:    0,
		logger:     logger,
		maxWorkers: maxWorkers,
		sem:        make(chan struct{}, maxWorkers),
		jobq:       make(chan *Job, maxWorkers),
		wg:         new(sync.WaitGroup),
		mu:         new(sync.RWMutex),
	}
}

// WithStrategy sets strategy to a dealer instance. Call before Start
func (d *Dealer) WithStrategy(strategy Strategy) {
	d.strategy = strategy
}

func (d *Dealer) Start() {
	if !atomic.CompareAndSwapInt32(&d.started, 0, 1) {
		return
	}
	switch d.strategy {
	case Semaphore:
		d.wg.Add(1)
		go d.startWithSemaphore()
		d.logger.Debugf("dealing has started with semaphore. max workers: %d", d.maxWorkers)
	case WorkerPool:
		d.startWorkerPool()
		d.logger.Debugf("dealing has started with workerPool. max workers: %d", d.maxWorkers)
	}
}

// Stop waits for queued jobs to finish. Jobs submitted after Stop fail with ErrNotStarted
func (d *Dealer) Stop() {
	d.mu.Lock()
	if !atomic.CompareAndSwapInt32(&d.started, 1, 0) {
		d.mu.Unlock()
		return
	}
	close(d.jobq)
	d.mu.Unlock()

	d.wg.Wait()
}

// Run schedules f and returns its job immediately
func (d *Dealer) Run(f JobFunc) *Job {
	j := newJob(f)
	if err := d.addJob(j); err != nil {
		return doneJob(NewJobResult(nil, err))
	}
	return j
}

// Do runs f and waits for its result or ctx cancellation
func (d *Dealer) Do(ctx context.Context, f JobFunc) (any, error) {
	res := d.Run(f).WaitContext(ctx)
	return res.Out, res.Err
}

func (d *Dealer) addJob(j *Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if atomic.LoadInt32(&d.started) == 0 {
		return ErrNotStarted
	}
	d.jobq <- j
	return nil
}

func (d *Dealer) startWorkerPool() {
	for n := 1; n <= d.maxWorkers; n++ {
		d.wg.Add(1)
		go d.startWorker()
	}
}

func (d *Dealer) startWorker() {
	defer d.wg.Done()
	for j := range d.jobq {
		j.resultch <- j.f()
	}
}

func (d *Dealer) startWithSemaphore() {
	defer d.wg.Done()
	for j := range d.jobq {
		d.acquire()
		d.wg.Add(1)
		go func(j *Job) {
			defer func() {
				d.release()
				d.wg.Done()
			}()
			j.resultch <- j.f()
		}(j)
	}
}

func (d *Dealer) acquire() {
	d.sem <- struct{}{}
}

func (d *Dealer) release() {
	<-d.sem
}
