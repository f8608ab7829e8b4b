package controller

import "sync"

// eventQueue is the loop's inbox. Events leave in arrival order. Only
// lossy events count against the limit and are dropped when it is
// reached. Link, session and survey events are always accepted.
type eventQueue struct {
	mu    sync.Mutex
	items []Event
	lossy int
	limit int

	// ready holds a wake-up for the loop whenever items is non-empty.
	ready chan struct{}
}

func newEventQueue(limit int) *eventQueue {
	return &eventQueue{limit: limit, ready: make(chan struct{}, 1)}
}

// isLossy reports whether ev may be dropped under load.
func isLossy(ev Event) bool {
	switch ev.(type) {
	case Published, MessageReceived:
		return true
	}
	return false
}

func (q *eventQueue) push(ev Event) bool {
	lossy := isLossy(ev)

	q.mu.Lock()
	if lossy && q.lossy >= q.limit {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	if lossy {
		q.lossy++
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

func (q *eventQueue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if isLossy(ev) {
		q.lossy--
	}
	return ev, true
}
