package importer

import "sync"

// queue is an unbounded FIFO that forwards events to out on its own
// goroutine, so the producer never blocks on a slow or absent consumer.
type queue struct {
	out chan Event

	mu     sync.Mutex
	items  []Event
	closed bool

	notify     chan struct{}
	detached   chan struct{}
	detachOnce sync.Once
}

func newQueue() *queue {
	q := &queue{
		out:      make(chan Event),
		notify:   make(chan struct{}, 1),
		detached: make(chan struct{}),
	}
	go q.run()
	return q
}

// push appends e. Pushes after close or detach are dropped.
func (q *queue) push(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()
	q.wake()
}

// close lets run drain what is queued and then close out.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// detach discards queued events and closes out without draining.
func (q *queue) detach() {
	q.detachOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.items = nil
		q.mu.Unlock()
		close(q.detached)
	})
}

func (q *queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-q.notify:
				continue
			case <-q.detached:
				return
			}
		}
		e := q.items[0]
		q.items[0] = Event{}
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- e:
		case <-q.detached:
			return
		}
	}
}
