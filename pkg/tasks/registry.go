// Package tasks tracks long-running CLI-triggered work per session so that
// duplicate concurrent runs are rejected and stuck runs can be superseded.
// State is in-process and best-effort: it does not survive restarts and is
// not shared across instances.
package tasks

import (
	"errors"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	// StaleAfter is how long a running task may go without a heartbeat
	// before a new start for the same session supersedes it.
	StaleAfter = 10 * time.Minute
	// Retention is how long finished records are kept before lazy GC.
	Retention = time.Hour
)

type Task struct {
	TaskID      string     `json:"taskId"`
	SessionID   string     `json:"sessionId"`
	Status      Status     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LastBeat    time.Time  `json:"lastHeartbeat"`
}

var (
	ErrNotFound   = errors.New("task not found")
	ErrNotRunning = errors.New("task is not running")
)

// ConflictError reports an already-running fresh task for the session.
type ConflictError struct {
	Existing Task
}

func (e *ConflictError) Error() string {
	return "session already has a running task: " + e.Existing.TaskID
}

type Registry struct {
	mu    sync.Mutex
	tasks map[string]Task
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]Task),
		now:   time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// gc drops records past retention. Caller holds the lock.
func (r *Registry) gc(now time.Time) {
	for id, t := range r.tasks {
		ref := t.StartedAt
		if t.CompletedAt != nil {
			ref = *t.CompletedAt
		}
		if now.Sub(ref) > Retention {
			delete(r.tasks, id)
		}
	}
}

func (r *Registry) stale(t Task, now time.Time) bool {
	return t.Status == StatusRunning && now.Sub(t.LastBeat) > StaleAfter
}

// Start registers a new running task for the session. If the session
// already has a fresh running task, it returns a ConflictError carrying
// the existing record. A stale running task is marked failed and
// superseded.
func (r *Registry) Start(sessionID string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.gc(now)

	for id, t := range r.tasks {
		if t.SessionID != sessionID || t.Status != StatusRunning {
			continue
		}
		if !r.stale(t, now) {
			return Task{}, &ConflictError{Existing: t}
		}
		completed := now
		t.Status = StatusFailed
		t.CompletedAt = &completed
		r.tasks[id] = t
	}

	task := Task{
		TaskID:    ksuid.New().String(),
		SessionID: sessionID,
		Status:    StatusRunning,
		StartedAt: now,
		LastBeat:  now,
	}
	r.tasks[task.TaskID] = task
	return task, nil
}

// Heartbeat refreshes a running task's liveness timestamp.
func (r *Registry) Heartbeat(taskID string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.gc(now)

	t, ok := r.tasks[taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	if t.Status != StatusRunning {
		return Task{}, ErrNotRunning
	}
	t.LastBeat = now
	r.tasks[taskID] = t
	return t, nil
}

// Finish marks a running task completed or failed.
func (r *Registry) Finish(taskID string, status Status) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.gc(now)

	t, ok := r.tasks[taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	if t.Status != StatusRunning {
		return Task{}, ErrNotRunning
	}
	t.Status = status
	t.CompletedAt = &now
	r.tasks[taskID] = t
	return t, nil
}

// List returns live records, optionally filtered by session.
func (r *Registry) List(sessionID string) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gc(r.now())

	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if sessionID == "" || t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out
}
