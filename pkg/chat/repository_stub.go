package chat

import (
	"context"
	"sort"
	"sync"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu       sync.Mutex
	sessions map[string]Session
	owners   map[string]string
	messages map[string][]Message
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		sessions: make(map[string]Session),
		owners:   make(map[string]string),
		messages: make(map[string][]Message),
	}
}

func (r *RepositoryStub) StoreSession(_ context.Context, accountId string, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
	r.owners[session.Id] = accountId
	return nil
}

func (r *RepositoryStub) GetSession(_ context.Context, accountId string, sessionId string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionId]
	if !ok || r.owners[sessionId] != accountId {
		return Session{}, ErrSessionNotFound
	}
	session.Messages = append([]Message(nil), r.messages[sessionId]...)
	return session, nil
}

func (r *RepositoryStub) ListSessions(_ context.Context, accountId string) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []Session
	for id, session := range r.sessions {
		if r.owners[id] != accountId {
			continue
		}
		session.Messages = append([]Message(nil), r.messages[id]...)
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r *RepositoryStub) StoreMessage(_ context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[message.SessionId]; !ok {
		return ErrSessionNotFound
	}
	r.messages[message.SessionId] = append(r.messages[message.SessionId], message)
	return nil
}

func (r *RepositoryStub) GetMessage(_ context.Context, accountId string, sessionId string, messageId string) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[sessionId] != accountId {
		return Message{}, ErrMessageNotFound
	}
	for _, m := range r.messages[sessionId] {
		if m.Id == messageId {
			return m, nil
		}
	}
	return Message{}, ErrMessageNotFound
}

func (r *RepositoryStub) SetFavorite(_ context.Context, accountId string, sessionId string, messageId string, favorite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[sessionId] != accountId {
		return ErrMessageNotFound
	}
	list := r.messages[sessionId]
	for i := range list {
		if list[i].Id == messageId {
			list[i].Favorite = favorite
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *RepositoryStub) ListFavorites(_ context.Context, accountId string) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var favorites []Message
	for sessionId, list := range r.messages {
		if r.owners[sessionId] != accountId {
			continue
		}
		for _, m := range list {
			if m.Favorite {
				favorites = append(favorites, m)
			}
		}
	}
	sort.Slice(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.After(favorites[j].CreatedAt)
	})
	return favorites, nil
}
