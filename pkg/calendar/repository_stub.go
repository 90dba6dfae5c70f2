package calendar

import (
	"context"
	"sync"
	"time"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu     sync.Mutex
	events map[string][]Event
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{events: make(map[string][]Event)}
}

func (r *RepositoryStub) StoreEvent(_ context.Context, accountId string, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[accountId] = append(r.events[accountId], event)
	return nil
}

func (r *RepositoryStub) GetEvents(_ context.Context, accountId string, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Event
	for _, e := range r.events[accountId] {
		if !e.StartTime.After(to) && !e.EndTime.Before(from) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *RepositoryStub) DeleteEvent(_ context.Context, accountId string, eventUid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.events[accountId]
	for i, e := range list {
		if e.UID == eventUid {
			r.events[accountId] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrEventNotFound
}
