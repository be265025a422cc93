// Package render runs generated scenes through the manim command line
// tool and schedules those runs behind a debounce window.
package render

import (
	"context"
	"log"
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

type State string

const (
	StateIdle      State = "idle"
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

type Status struct {
	State   State   `json:"state"`
	Pending bool    `json:"pending"`
	Renders int     `json:"renders"`
	Last    *Result `json:"last,omitempty"`
}

// Scheduler coalesces bursts of triggers into single renders and keeps at
// most one render in flight. A trigger that matures while a render runs
// waits for it and supersedes any job already waiting.
type Scheduler struct {
	renderer Renderer
	delay    time.Duration
	onDone   func(Job, Result)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending *Job // waiting for the debounce window
	next    *Job // matured, waiting for the running render
	running bool
	closed  bool
	state   State
	renders int
	last    *Result
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. onDone is called once per finished
// render from the background goroutine and may be nil.
func NewScheduler(renderer Renderer, delay time.Duration, onDone func(Job, Result)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{
		renderer: renderer,
		delay:    delay,
		onDone:   onDone,
		state:    StateIdle,
	}
}

// Trigger restarts the debounce window with the latest job.
func (s *Scheduler) Trigger(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	s.pending = &job
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })

	if !s.running {
		s.state = StateQueued
	}
}

// Dispatch skips the debounce window and renders job as soon as the
// render in flight, if any, completes.
func (s *Scheduler) Dispatch(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.gen++
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.enqueueLocked(job)
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.pending == nil || s.closed {
		return
	}
	job := *s.pending
	s.pending = nil
	s.enqueueLocked(job)
}

func (s *Scheduler) enqueueLocked(job Job) {
	if s.running {
		s.next = &job
		return
	}
	s.startLocked(job)
}

func (s *Scheduler) startLocked(job Job) {
	s.running = true
	s.state = StateRunning
	s.wg.Add(1)
	go s.run(job)
}

func (s *Scheduler) run(job Job) {
	defer s.wg.Done()

	result := s.renderer.Render(context.Background(), job)

	s.mu.Lock()
	s.renders++
	s.last = &result
	if result.Success {
		s.state = StateSucceeded
	} else {
		s.state = StateFailed
	}
	if s.pending != nil {
		s.state = StateQueued
	}
	s.mu.Unlock()

	// Still marked running here, so completions are delivered in order.
	log.Printf("Render finished (success=%t).", result.Success)
	if s.onDone != nil {
		s.onDone(job, result)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.next != nil && !s.closed {
		next := *s.next
		s.next = nil
		s.startLocked(next)
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:   s.state,
		Pending: s.pending != nil || s.next != nil,
		Renders: s.renders,
	}
	if s.last != nil {
		last := *s.last
		st.Last = &last
	}
	return st
}

// Close drops queued work and waits for the render in flight.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.pending = nil
	s.next = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
