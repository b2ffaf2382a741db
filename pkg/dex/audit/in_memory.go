package audit

import (
	"context"
	"sync"

	"github.com/pekdex/dexcore/pkg/dex/model"
)

// InMemoryStore keeps settlement attempts grouped by reference for
// diagnostics. It is process-local; durable audit goes through the NATS
// recorder and the worker.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]*model.SettlementEvent // Reference -> attempts in order
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events: make(map[string][]*model.SettlementEvent),
	}
}

func (s *InMemoryStore) Record(ctx context.Context, ev *model.SettlementEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.Reference] = append(s.events[ev.Reference], ev)
}

// ByReference returns all recorded attempts for one settlement reference.
func (s *InMemoryStore) ByReference(reference string) []*model.SettlementEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.events[reference]
	out := make([]*model.SettlementEvent, len(evs))
	copy(out, evs)
	return out
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, evs := range s.events {
		n += len(evs)
	}
	return n
}
