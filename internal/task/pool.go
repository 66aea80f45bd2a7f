// Package task runs parse tasks on isolated workers.
//
// Every task builds its own parser state, so tasks never share mutable data
// and may run in parallel. A task either completes with a full result or
// fails as a whole; a caller that gives up simply stops waiting.
package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"gnsslog/internal/parser"
	"gnsslog/internal/report"
)

type Config struct {
	// Workers bounds concurrently running parses.
	Workers int
	// Keep bounds how many finished entries Get can still return.
	Keep int
	// ExcerptChars is passed to report.Build.
	ExcerptChars int
}

// Observer is notified around every task. Callbacks run on the task goroutine.
type Observer interface {
	TaskStarted()
	TaskDone(failed bool)
	ObserveResult(res parser.Result, d time.Duration)
}

// Entry is a finished task.
type Entry struct {
	ID        string        `json:"id"`
	Name      string        `json:"name,omitempty"`
	Submitted time.Time     `json:"submitted"`
	Duration  time.Duration `json:"duration"`
	Report    report.Report `json:"report"`
	Result    parser.Result `json:"-"`
}

type Stats struct {
	Completed   uint64 `json:"completed"`
	Failed      uint64 `json:"failed"`
	BytesParsed uint64 `json:"bytes_parsed"`
}

type Pool struct {
	cfg    Config
	parser *parser.Parser
	sem    *semaphore.Weighted

	mu      sync.Mutex
	entries map[string]Entry
	order   []string
	obs     []Observer
	onDone  []func(Entry)

	completed atomic.Uint64
	failed    atomic.Uint64
	bytes     atomic.Uint64
}

func NewPool(cfg Config, p *parser.Parser) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 16
	}
	if p == nil {
		p = parser.New(parser.Options{})
	}
	return &Pool{
		cfg:     cfg,
		parser:  p,
		sem:     semaphore.NewWeighted(int64(cfg.Workers)),
		entries: make(map[string]Entry),
	}
}

// Observe registers o for all subsequent tasks.
func (p *Pool) Observe(o Observer) {
	if o == nil {
		return
	}
	p.mu.Lock()
	p.obs = append(p.obs, o)
	p.mu.Unlock()
}

// OnDone registers fn to receive every completed entry.
func (p *Pool) OnDone(fn func(Entry)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.onDone = append(p.onDone, fn)
	p.mu.Unlock()
}

// Run reads r completely and parses it on a worker. Read errors fail the
// task; ctx cancellation abandons the wait (the worker finishes on its own).
func (p *Pool) Run(ctx context.Context, name string, r io.Reader) (Entry, error) {
	if r == nil {
		return Entry{}, errors.New("task: reader is nil")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		p.failed.Add(1)
		p.notifyFailed()
		return Entry{}, fmt.Errorf("task: read %s: %w", displayName(name), err)
	}
	return p.RunBytes(ctx, name, buf.Bytes())
}

// RunBytes parses data on a worker. data must not be modified until the
// returned entry is delivered.
func (p *Pool) RunBytes(ctx context.Context, name string, data []byte) (Entry, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Entry{}, err
	}

	e := Entry{ID: uuid.NewString(), Name: name, Submitted: time.Now().UTC()}
	observers := p.observers()
	for _, o := range observers {
		o.TaskStarted()
	}

	done := make(chan Entry, 1)
	go func() {
		defer p.sem.Release(1)
		start := time.Now()
		res := p.parser.ParseBytes(data)
		e.Duration = time.Since(start)
		e.Result = res
		e.Report = report.Build(res, p.cfg.ExcerptChars)
		for _, o := range observers {
			o.ObserveResult(res, e.Duration)
			o.TaskDone(false)
		}
		p.store(e)
		done <- e
	}()

	select {
	case e := <-done:
		return e, nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}

func (p *Pool) store(e Entry) {
	p.completed.Add(1)
	p.bytes.Add(uint64(e.Result.Stats.Bytes))

	p.mu.Lock()
	p.entries[e.ID] = e
	p.order = append(p.order, e.ID)
	for len(p.order) > p.cfg.Keep {
		delete(p.entries, p.order[0])
		p.order = p.order[1:]
	}
	callbacks := make([]func(Entry), len(p.onDone))
	copy(callbacks, p.onDone)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(e)
	}
}

// Get returns a kept entry.
func (p *Pool) Get(id string) (Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	return e, ok
}

func (p *Pool) Stats() Stats {
	return Stats{
		Completed:   p.completed.Load(),
		Failed:      p.failed.Load(),
		BytesParsed: p.bytes.Load(),
	}
}

func (p *Pool) observers() []Observer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Observer(nil), p.obs...)
}

func (p *Pool) notifyFailed() {
	for _, o := range p.observers() {
		o.TaskStarted()
		o.TaskDone(true)
	}
}

func displayName(name string) string {
	if name == "" {
		return "recording"
	}
	return name
}
