package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/internal/utils"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultSessionTitle names a session that has no user message yet.
const DefaultSessionTitle = "New conversation"

const sessionTitleMaxLen = 60

type Service interface {
	CreateSession(ctx context.Context) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, sessionId string) (Session, error)
	SendMessage(ctx context.Context, sessionId string, content string, mode string) (Message, error)
	ToggleFavorite(ctx context.Context, sessionId string, messageId string) (Message, error)
	ListFavorites(ctx context.Context) ([]FavoriteMessage, error)
}

type ServiceImpl struct {
	repo       Repository
	businesses business.Service
	llm        LlmClient
	mailer     Mailer
	clock      utils.Clock
	bus        *event_bus.EventBus

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(repo Repository, businesses business.Service, llm LlmClient, mailer Mailer, clock utils.Clock, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{
		repo:       repo,
		businesses: businesses,
		llm:        llm,
		mailer:     mailer,
		clock:      clock,
		bus:        bus,
		inFlight:   make(map[string]bool),
	}
}

func (s *ServiceImpl) CreateSession(ctx context.Context) (Session, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to get current account: %w", err)
	}

	session := Session{
		Id:        uuid.NewString(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.StoreSession(ctx, accountId, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (s *ServiceImpl) ListSessions(ctx context.Context) ([]Session, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current account: %w", err)
	}
	return s.repo.ListSessions(ctx, accountId)
}

func (s *ServiceImpl) GetSession(ctx context.Context, sessionId string) (Session, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to get current account: %w", err)
	}
	return s.repo.GetSession(ctx, accountId, sessionId)
}

// SendMessage runs one request/reply cycle: store the user message, call the
// model with a mode-specific prompt and the caller's business context, run the
// email tool when the model asks for it, store and return the reply. Model
// failures become assistant-styled replies, never transport errors.
func (s *ServiceImpl) SendMessage(ctx context.Context, sessionId string, content string, mode string) (Message, error) {
	claims, err := auth.CurrentClaims(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("failed to get current account: %w", err)
	}

	if !s.acquire(sessionId) {
		return Message{}, ErrSessionBusy
	}
	defer s.release(sessionId)

	if _, err := s.repo.GetSession(ctx, claims.UserId, sessionId); err != nil {
		return Message{}, err
	}

	userMessage := Message{
		Id:        uuid.NewString(),
		SessionId: sessionId,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.StoreMessage(ctx, userMessage); err != nil {
		return Message{}, err
	}

	reply, toolUsed := s.completeReply(ctx, claims.BusinessId, content, mode)

	assistantMessage := Message{
		Id:        uuid.NewString(),
		SessionId: sessionId,
		Role:      RoleAssistant,
		Content:   reply,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.StoreMessage(ctx, assistantMessage); err != nil {
		return Message{}, err
	}

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ChatMessageSent, event_bus.ChatStats{
		SessionId: sessionId,
		Mode:      mode,
		ToolUsed:  toolUsed,
	}))
	return assistantMessage, nil
}

// completeReply produces the assistant's answer text. It never returns an
// error: backend failures are folded into the reply so the chat degrades to a
// visible message instead of a failed request.
func (s *ServiceImpl) completeReply(ctx context.Context, businessId, content, mode string) (string, bool) {
	var bizCtx *business.Context
	if businessId != "" {
		fetched, err := s.businesses.BusinessContext(ctx, businessId)
		if err != nil {
			log.Warnf("could not fetch business context for chat: %v", err)
		} else {
			bizCtx = &fetched
		}
	}

	completion, err := s.llm.Complete(ctx, CompletionRequest{
		SystemPrompt:    SystemPrompt(mode, bizCtx),
		UserMessage:     content,
		EnableEmailTool: WantsEmailTool(content),
	})
	if err != nil {
		log.Errorf("chat completion failed: %v", err)
		var backendErr *BackendError
		if errors.As(err, &backendErr) && backendErr.Message != "" {
			return backendErr.Message, false
		}
		return FallbackReply, false
	}

	if completion.ToolCall != nil {
		call := completion.ToolCall
		if err := s.mailer.Send(call.To, call.Subject, call.Body); err != nil {
			return fmt.Sprintf("I wrote the email but could not send it to %s. Please check the mail settings and try again.", call.To), true
		}
		return fmt.Sprintf("Done. I sent the email \"%s\" to %s.", call.Subject, call.To), true
	}
	return completion.Content, false
}

func (s *ServiceImpl) ToggleFavorite(ctx context.Context, sessionId string, messageId string) (Message, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("failed to get current account: %w", err)
	}

	message, err := s.repo.GetMessage(ctx, accountId, sessionId, messageId)
	if err != nil {
		return Message{}, err
	}
	if err := s.repo.SetFavorite(ctx, accountId, sessionId, messageId, !message.Favorite); err != nil {
		return Message{}, err
	}
	message.Favorite = !message.Favorite

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ChatMessageFavored, messageId))
	return message, nil
}

// ListFavorites returns the account's favorited messages, newest first, each
// tagged with its session's title.
func (s *ServiceImpl) ListFavorites(ctx context.Context) ([]FavoriteMessage, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current account: %w", err)
	}

	favorites, err := s.repo.ListFavorites(ctx, accountId)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListSessions(ctx, accountId)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(sessions))
	for _, session := range sessions {
		titles[session.Id] = SessionTitle(session)
	}

	result := make([]FavoriteMessage, 0, len(favorites))
	for _, m := range favorites {
		title, ok := titles[m.SessionId]
		if !ok {
			title = DefaultSessionTitle
		}
		result = append(result, FavoriteMessage{Message: m, SessionTitle: title})
	}
	return result, nil
}

// SessionTitle derives a display title from the first user message, truncated
// on a rune boundary.
func SessionTitle(session Session) string {
	for _, m := range session.Messages {
		if m.Role != RoleUser || m.Content == "" {
			continue
		}
		if utf8.RuneCountInString(m.Content) <= sessionTitleMaxLen {
			return m.Content
		}
		runes := []rune(m.Content)
		return string(runes[:sessionTitleMaxLen]) + "..."
	}
	return DefaultSessionTitle
}

func (s *ServiceImpl) acquire(sessionId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionId] {
		return false
	}
	s.inFlight[sessionId] = true
	return true
}

func (s *ServiceImpl) release(sessionId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionId)
}
