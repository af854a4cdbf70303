package performance

import (
	"sync"

	"github.com/wonny/perfdash/internal/contracts"
)

// broadcaster fans snapshots out to subscribers.
// Each subscriber has a one-slot buffer holding the latest undelivered snapshot.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan contracts.DashboardSnapshot
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan contracts.DashboardSnapshot)}
}

func (b *broadcaster) subscribe() (<-chan contracts.DashboardSnapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan contracts.DashboardSnapshot, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *broadcaster) publish(s contracts.DashboardSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		// replace a stale undelivered snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
