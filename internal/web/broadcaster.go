package web

import (
	"sync"

	"gnsslog/internal/report"
)

// Notice announces a completed parse task to live subscribers.
type Notice struct {
	ID     string        `json:"id"`
	Name   string        `json:"name,omitempty"`
	Report report.Report `json:"report"`
}

// Broadcaster fans out notices to any listeners (e.g. websocket clients).
// It keeps the most recent notice so new subscribers get it immediately.
// Slow subscribers drop notices rather than block the publisher.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan Notice
	nextID   int
	last     Notice
	haveLast bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Notice)}
}

func (b *Broadcaster) Subscribe(buffer int) (int, <-chan Notice) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 4
	}
	ch := make(chan Notice, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last, have := b.last, b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Publish(n Notice) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = n
	b.haveLast = true
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

func (b *Broadcaster) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
