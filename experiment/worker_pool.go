package experiment

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

// TrialTask describes one independent reconciliation trial: a fresh network
// built from Config and run to convergence or budget exhaustion.
type TrialTask struct {
	Trial  int
	Config reconcile.Config
}

// TrialOutcome pairs a trial index with the session statistics it produced.
// Err is set only when the configuration was rejected.
type TrialOutcome struct {
	Trial int
	Stats reconcile.Stats
	Err   error
}

// PoolStats contains trial pool statistics.
type PoolStats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Pending   int   `json:"pending"`
}

// TrialPool runs independent trials across a fixed set of worker goroutines.
// Trials share nothing (each owns its Network), so the pool parallelizes
// across trials and never within a round.
type TrialPool struct {
	workers int
	tasks   chan TrialTask
	results chan TrialOutcome
	wg      sync.WaitGroup

	active    int64
	completed int64
	failed    int64

	running bool
	mu      sync.RWMutex
}

// NewTrialPool creates a pool with the given number of workers and starts
// them. Channel capacity covers a full configuration's trial batch.
func NewTrialPool(workers, capacity int) *TrialPool {
	if workers <= 0 {
		workers = 1
	}
	if capacity < workers {
		capacity = workers
	}

	p := &TrialPool{
		workers: workers,
		tasks:   make(chan TrialTask, capacity),
		results: make(chan TrialOutcome, capacity),
		running: true,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// worker consumes trial tasks until the task channel closes.
func (p *TrialPool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		p.runTrial(task)
	}
}

// runTrial executes a single trial and reports its outcome.
func (p *TrialPool) runTrial(task TrialTask) {
	atomic.AddInt64(&p.active, 1)
	defer atomic.AddInt64(&p.active, -1)

	outcome := TrialOutcome{Trial: task.Trial}

	network, err := reconcile.NewNetwork(task.Config)
	if err != nil {
		outcome.Err = err
		atomic.AddInt64(&p.failed, 1)
		p.results <- outcome
		return
	}

	outcome.Stats = network.RunUntilConvergence()
	atomic.AddInt64(&p.completed, 1)
	p.results <- outcome
}

// Submit queues a trial for execution.
func (p *TrialPool) Submit(task TrialTask) error {
	p.mu.RLock()
	running := p.running
	p.mu.RUnlock()

	if !running {
		return errors.New("trial pool is shut down")
	}

	p.tasks <- task
	return nil
}

// Results returns the outcome channel.
func (p *TrialPool) Results() <-chan TrialOutcome {
	return p.results
}

// Stats returns current pool statistics.
func (p *TrialPool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Active:    atomic.LoadInt64(&p.active),
		Completed: atomic.LoadInt64(&p.completed),
		Failed:    atomic.LoadInt64(&p.failed),
		Pending:   len(p.tasks),
	}
}

// Shutdown stops accepting tasks and waits for in-flight trials to finish.
func (p *TrialPool) Shutdown() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.tasks)
	p.wg.Wait()
	close(p.results)
}
