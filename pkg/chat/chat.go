package chat

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrMessageNotFound = errors.New("chat message not found")
	// ErrSessionBusy signals a second send while one is already in flight
	// for the same session.
	ErrSessionBusy = errors.New("a message is already being processed for this session")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ModeCopilot selects the proactive assistant prompt; any other mode value
// falls back to the default prompt.
const ModeCopilot = "copilot"

type Message struct {
	Id        string
	SessionId string
	Role      Role
	Content   string
	Favorite  bool
	CreatedAt time.Time
}

type Session struct {
	Id        string
	CreatedAt time.Time
	Messages  []Message
}

// FavoriteMessage is a favorited message joined with the title of the session
// it belongs to.
type FavoriteMessage struct {
	Message
	SessionTitle string
}
