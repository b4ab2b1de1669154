package importer

import (
	"context"
	"sync"
	"time"
)

// Task is one running import. Its event stream is ordered and ends with
// exactly one Result event, after which the channel is closed.
type Task struct {
	ID      string
	Archive string
	Started time.Time

	events *queue
	done   chan struct{}

	mu       sync.Mutex
	stage    Stage
	result   Result
	finished bool
}

func newTask(id, archive string) *Task {
	return &Task{
		ID:      id,
		Archive: archive,
		Started: time.Now(),
		events:  newQueue(),
		done:    make(chan struct{}),
		stage:   StageStart,
	}
}

// Events returns the task's event stream. There is one logical consumer;
// the channel is closed after the Result event or after Detach.
func (t *Task) Events() <-chan Event {
	return t.events.out
}

// Detach tells the task nobody is listening. Queued and future events are
// discarded; the import itself runs to completion.
func (t *Task) Detach() {
	t.events.detach()
}

// Done is closed once the result is known.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		r, _ := t.Result()
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome and whether the task has finished.
func (t *Task) Result() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.finished
}

// Stage returns the most recently reported stage.
func (t *Task) Stage() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stage
}

// progress records and emits a progress event. Nothing is emitted after a
// terminal stage.
func (t *Task) progress(p Progress) {
	t.mu.Lock()
	if t.stage.Terminal() || t.finished {
		t.mu.Unlock()
		return
	}
	t.stage = p.Stage
	t.mu.Unlock()

	p.Total = ProgressTotal
	t.events.push(Event{TaskID: t.ID, Progress: &p})
}

// finish records r, emits it as the last event, and closes the stream.
// Only the first call has any effect.
func (t *Task) finish(r Result) {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return
	}
	t.finished = true
	t.result = r
	t.mu.Unlock()

	t.events.push(Event{TaskID: t.ID, Result: &r})
	t.events.close()
	close(t.done)
}
