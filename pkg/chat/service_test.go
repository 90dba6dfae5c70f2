package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/internal/utils"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccountId = "account-1"

// llmStub is a scriptable LlmClient.
type llmStub struct {
	mu         sync.Mutex
	completion Completion
	err        error
	requests   []CompletionRequest
	// block, when set, holds Complete until released, to exercise the
	// busy guard.
	block chan struct{}
}

func (s *llmStub) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return s.completion, s.err
}

func (s *llmStub) lastRequest() CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

// mailerStub records sent mail.
type mailerStub struct {
	sent []EmailToolCall
	err  error
}

func (m *mailerStub) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, EmailToolCall{To: to, Subject: subject, Body: body})
	return nil
}

func testContext() context.Context {
	return auth.WithClaims(context.Background(), auth.Claims{
		UserId:     testAccountId,
		BusinessId: "business-1",
	})
}

func newTestService(t *testing.T) (*ServiceImpl, *llmStub, *mailerStub, *utils.MockClock) {
	t.Helper()
	bus := event_bus.NewEventBus()
	businessRepo := business.NewRepositoryStub()
	require.NoError(t, businessRepo.StoreCompany(context.Background(), testAccountId, business.Company{
		Id:       "business-1",
		Name:     "Acme",
		Industry: "Retail",
	}))
	llm := &llmStub{completion: Completion{Content: "Hello there"}}
	mailer := &mailerStub{}
	clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(NewRepositoryStub(), business.NewService(businessRepo, bus), llm, mailer, clock, bus)
	return service, llm, mailer, clock
}

func createSession(t *testing.T, service *ServiceImpl) Session {
	t.Helper()
	session, err := service.CreateSession(testContext())
	require.NoError(t, err)
	return session
}

func TestServiceImpl_SendMessage(t *testing.T) {
	t.Run("stores the user message and the assistant reply", func(t *testing.T) {
		service, _, _, _ := newTestService(t)
		session := createSession(t, service)

		reply, err := service.SendMessage(testContext(), session.Id, "What should I focus on?", "")

		require.NoError(t, err)
		assert.Equal(t, RoleAssistant, reply.Role)
		assert.Equal(t, "Hello there", reply.Content)

		stored, err := service.GetSession(testContext(), session.Id)
		require.NoError(t, err)
		require.Len(t, stored.Messages, 2)
		assert.Equal(t, RoleUser, stored.Messages[0].Role)
		assert.Equal(t, RoleAssistant, stored.Messages[1].Role)
	})

	t.Run("includes business context in the system prompt", func(t *testing.T) {
		service, llm, _, _ := newTestService(t)
		session := createSession(t, service)

		_, err := service.SendMessage(testContext(), session.Id, "Hi", "")

		require.NoError(t, err)
		assert.Contains(t, llm.lastRequest().SystemPrompt, "Name: Acme")
		assert.Contains(t, llm.lastRequest().SystemPrompt, "Area: Retail")
	})

	t.Run("copilot mode switches the base prompt", func(t *testing.T) {
		service, llm, _, _ := newTestService(t)
		session := createSession(t, service)

		_, err := service.SendMessage(testContext(), session.Id, "Hi", ModeCopilot)

		require.NoError(t, err)
		assert.Contains(t, llm.lastRequest().SystemPrompt, "business copilot")
	})

	t.Run("email tool is only offered on an explicit request", func(t *testing.T) {
		service, llm, _, _ := newTestService(t)
		session := createSession(t, service)

		_, err := service.SendMessage(testContext(), session.Id, "Tell me about email marketing", "")
		require.NoError(t, err)
		assert.False(t, llm.lastRequest().EnableEmailTool)

		_, err = service.SendMessage(testContext(), session.Id, "Please write and send an email to Anna about the delivery", "")
		require.NoError(t, err)
		assert.True(t, llm.lastRequest().EnableEmailTool)
	})

	t.Run("a tool call sends the email and confirms", func(t *testing.T) {
		service, llm, mailer, _ := newTestService(t)
		session := createSession(t, service)
		llm.completion = Completion{ToolCall: &EmailToolCall{
			To:      "anna@example.com",
			Subject: "Delivery update",
			Body:    "The delivery arrives Tuesday.",
		}}

		reply, err := service.SendMessage(testContext(), session.Id, "write and send an email to Anna", "")

		require.NoError(t, err)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "anna@example.com", mailer.sent[0].To)
		assert.Contains(t, reply.Content, "anna@example.com")
		assert.Contains(t, reply.Content, "Delivery update")
	})

	t.Run("backend errors become assistant replies with the backend text", func(t *testing.T) {
		service, llm, _, _ := newTestService(t)
		session := createSession(t, service)
		llm.completion = Completion{}
		llm.err = &BackendError{Message: "model is overloaded"}

		reply, err := service.SendMessage(testContext(), session.Id, "Hi", "")

		require.NoError(t, err)
		assert.Equal(t, "model is overloaded", reply.Content)
	})

	t.Run("transport errors fall back to the generic reply", func(t *testing.T) {
		service, llm, _, _ := newTestService(t)
		session := createSession(t, service)
		llm.completion = Completion{}
		llm.err = errors.New("connection refused")

		reply, err := service.SendMessage(testContext(), session.Id, "Hi", "")

		require.NoError(t, err)
		assert.Equal(t, FallbackReply, reply.Content)
	})

	t.Run("second concurrent send on the same session is rejected", func(t *testing.T) {
		service, llm, _, _ := newTestService(t)
		session := createSession(t, service)
		llm.block = make(chan struct{})

		firstDone := make(chan error, 1)
		go func() {
			_, err := service.SendMessage(testContext(), session.Id, "slow one", "")
			firstDone <- err
		}()

		// Wait until the first send is inside the LLM call.
		require.Eventually(t, func() bool {
			llm.mu.Lock()
			defer llm.mu.Unlock()
			return len(llm.requests) == 1
		}, time.Second, 5*time.Millisecond)

		_, err := service.SendMessage(testContext(), session.Id, "second one", "")
		assert.ErrorIs(t, err, ErrSessionBusy)

		close(llm.block)
		require.NoError(t, <-firstDone)
	})

	t.Run("unknown session yields not found", func(t *testing.T) {
		service, _, _, _ := newTestService(t)

		_, err := service.SendMessage(testContext(), "missing", "Hi", "")

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestServiceImpl_ToggleFavorite(t *testing.T) {
	t.Run("toggling twice restores the original state", func(t *testing.T) {
		service, _, _, _ := newTestService(t)
		session := createSession(t, service)
		reply, err := service.SendMessage(testContext(), session.Id, "Hi", "")
		require.NoError(t, err)

		toggled, err := service.ToggleFavorite(testContext(), session.Id, reply.Id)
		require.NoError(t, err)
		assert.True(t, toggled.Favorite)

		restored, err := service.ToggleFavorite(testContext(), session.Id, reply.Id)
		require.NoError(t, err)
		assert.False(t, restored.Favorite)

		favorites, err := service.ListFavorites(testContext())
		require.NoError(t, err)
		assert.Empty(t, favorites)
	})

	t.Run("unknown message yields not found", func(t *testing.T) {
		service, _, _, _ := newTestService(t)
		session := createSession(t, service)

		_, err := service.ToggleFavorite(testContext(), session.Id, "missing")

		assert.ErrorIs(t, err, ErrMessageNotFound)
	})
}

func TestServiceImpl_ListFavorites(t *testing.T) {
	t.Run("returns favorites newest first with session titles", func(t *testing.T) {
		service, _, _, clock := newTestService(t)
		session := createSession(t, service)

		first, err := service.SendMessage(testContext(), session.Id, "What are my options?", "")
		require.NoError(t, err)
		clock.SetNow(clock.FixedNow.Add(time.Minute))
		second, err := service.SendMessage(testContext(), session.Id, "And the risks?", "")
		require.NoError(t, err)

		_, err = service.ToggleFavorite(testContext(), session.Id, first.Id)
		require.NoError(t, err)
		_, err = service.ToggleFavorite(testContext(), session.Id, second.Id)
		require.NoError(t, err)

		favorites, err := service.ListFavorites(testContext())

		require.NoError(t, err)
		require.Len(t, favorites, 2)
		assert.Equal(t, second.Id, favorites[0].Id)
		assert.Equal(t, first.Id, favorites[1].Id)
		assert.Equal(t, "What are my options?", favorites[0].SessionTitle)
	})
}

func TestSessionTitle(t *testing.T) {
	t.Run("uses the first user message", func(t *testing.T) {
		session := Session{Messages: []Message{
			{Role: RoleAssistant, Content: "Welcome"},
			{Role: RoleUser, Content: "Plan my week"},
		}}
		assert.Equal(t, "Plan my week", SessionTitle(session))
	})

	t.Run("falls back to a placeholder for an empty session", func(t *testing.T) {
		assert.Equal(t, DefaultSessionTitle, SessionTitle(Session{}))
	})

	t.Run("long titles are truncated", func(t *testing.T) {
		long := make([]rune, 100)
		for i := range long {
			long[i] = 'a'
		}
		session := Session{Messages: []Message{{Role: RoleUser, Content: string(long)}}}

		title := SessionTitle(session)

		assert.Len(t, []rune(title), 63)
	})
}

func TestWantsEmailTool(t *testing.T) {
	assert.True(t, WantsEmailTool("Write and send an email to the team"))
	assert.True(t, WantsEmailTool("please COMPOSE AND SEND a note"))
	assert.False(t, WantsEmailTool("what is a good email subject line?"))
	assert.False(t, WantsEmailTool("send the invoice by post"))
}
