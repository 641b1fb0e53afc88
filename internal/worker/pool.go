// Package worker implements a bounded worker pool for parallel file hashing.
package worker

import "sync"

// Hasher is the subset of hashing the pool needs. Declared here on the
// consumer side so the pool has no dependency on the engine package.
type Hasher interface {
	ExactHash(path string) (string, error)
	PerceptualHash(path string) (string, error)
}

// Job is one file to hash. Type and Size are carried through untouched so
// the consumer can build its record from the Result alone.
type Job struct {
	Path       string
	Type       string
	Size       int64
	Perceptual bool // also compute the perceptual digest
}

// Result holds the outcome of hashing a single job.
type Result struct {
	Job           Job
	ExactHash     string
	ContentHash   string
	Err           error // exact hash failed; the file must be excluded
	PerceptualErr error // perceptual hash failed; exact grouping still applies
}

// Pool manages a fixed set of worker goroutines that hash Jobs from a
// channel and emit Results to another channel.
type Pool struct {
	workers int
	hasher  Hasher
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers.
// Call Start() to launch the goroutines.
func NewPool(workers int, hasher Hasher) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		hasher:  hasher,
		jobs:    make(chan Job, workers*2), // small buffer for backpressure
		results: make(chan Result, workers*2),
	}
}

// Start launches the worker goroutines. Each reads from the jobs channel
// until it is closed.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Submit enqueues a job. It blocks when the jobs buffer is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Results returns the read-only results channel for the consumer.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown closes the jobs channel, waits for all workers to drain, then
// closes the results channel. Safe to call once.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.results <- p.process(job)
	}
}

func (p *Pool) process(job Job) Result {
	res := Result{Job: job}

	res.ExactHash, res.Err = p.hasher.ExactHash(job.Path)
	if res.Err != nil {
		return res
	}

	if job.Perceptual {
		res.ContentHash, res.PerceptualErr = p.hasher.PerceptualHash(job.Path)
	}
	return res
}
