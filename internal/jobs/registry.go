// Package jobs carries the batch side of the service: replaying part numbers
// from report files through the pipeline and rebuilding the promotions map.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownJob is returned when a job name has no registration.
var ErrUnknownJob = errors.New("jobs: unknown job")

// Job is a runnable batch task.
type Job func(ctx context.Context) error

// Registry maps job names onto runnable tasks. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]Job)}
}

// Register adds or replaces the job under name. Nil jobs are ignored.
func (r *Registry) Register(name string, job Job) {
	if name == "" || job == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[name] = job
}

// Has reports whether a job is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.jobs[name]
	return ok
}

// Run executes the named job synchronously.
func (r *Registry) Run(ctx context.Context, name string) error {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return job(ctx)
}

// Names lists the registered job names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
