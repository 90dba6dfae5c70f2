package app

import (
	"database/sql"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/config"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/internal/metrics"
	"github.com/bizmate/bizmate/internal/utils"
	"github.com/bizmate/bizmate/pkg/account"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/bizmate/bizmate/pkg/calendar"
	"github.com/bizmate/bizmate/pkg/chat"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Tokens   *auth.TokenService
	Clock    utils.Clock

	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	BusinessRepo    business.Repository
	BusinessService business.Service
	BusinessHandler *business.Handler

	AccountRepo    account.Repository
	AccountService account.Service
	AccountHandler *account.Handler

	CalendarRepo    calendar.Repository
	CalendarService calendar.Service
	CalendarHandler *calendar.Handler

	ChatRepo    chat.Repository
	LlmClient   chat.LlmClient
	Mailer      chat.Mailer
	ChatService chat.Service
	ChatHandler *chat.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Tokens = auth.NewTokenService(cfg.Jwt)
	deps.Clock = &utils.SystemClock{}

	deps.Registry = prometheus.NewRegistry()
	deps.Metrics = metrics.NewCollector(deps.Registry)

	deps.BusinessRepo = business.NewRepository(db)
	deps.BusinessService = business.NewService(deps.BusinessRepo, deps.EventBus)
	deps.BusinessHandler = business.NewHandler(deps.BusinessService, business.NewCsvEmployeeRenderer())

	deps.AccountRepo = account.NewRepository(db)
	deps.AccountService = account.NewService(deps.AccountRepo, deps.BusinessService, deps.Tokens, deps.Clock, deps.EventBus)
	deps.AccountHandler = account.NewHandler(deps.AccountService)

	deps.CalendarRepo = calendar.NewRepository(db)
	deps.CalendarService = calendar.NewService(deps.CalendarRepo, deps.BusinessService, deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.ChatRepo = chat.NewRepository(db)
	deps.LlmClient = chat.NewOpenAIClient(cfg.Llm)
	deps.Mailer = chat.NewSmtpMailer(cfg.Smtp)
	deps.ChatService = chat.NewService(deps.ChatRepo, deps.BusinessService, deps.LlmClient, deps.Mailer, deps.Clock, deps.EventBus)
	deps.ChatHandler = chat.NewHandler(deps.ChatService)

	subscribeObservers(deps)
	return deps
}

// subscribeObservers wires the audit log and metrics subscribers onto the bus.
func subscribeObservers(deps *Dependencies) {
	deps.EventBus.Subscribe(event_bus.EmployeesImported, func(e event_bus.Event) error {
		if stats, ok := e.Data.(event_bus.ImportStats); ok {
			deps.Metrics.RecordImportedRows(stats.Imported)
			deps.Metrics.RecordSkipped(stats.Skipped)
			log.Infof("Imported %d employee rows (%d skipped)", stats.Imported, stats.Skipped)
		}
		return nil
	})
	deps.EventBus.Subscribe(event_bus.CalendarImported, func(e event_bus.Event) error {
		if stats, ok := e.Data.(event_bus.ImportStats); ok {
			deps.Metrics.RecordImportedEvents(stats.Imported)
			deps.Metrics.RecordSkipped(stats.Skipped)
			log.Infof("Imported %d calendar events (%d skipped)", stats.Imported, stats.Skipped)
		}
		return nil
	})
	deps.EventBus.Subscribe(event_bus.ChatMessageSent, func(e event_bus.Event) error {
		deps.Metrics.RecordChatRequest()
		if stats, ok := e.Data.(event_bus.ChatStats); ok && stats.ToolUsed {
			log.Infof("Chat session %s used the email tool", stats.SessionId)
		}
		return nil
	})
	deps.EventBus.Subscribe(event_bus.AccountRegistered, func(e event_bus.Event) error {
		log.Infof("New account registered: %v", e.Data)
		return nil
	})
	deps.EventBus.Subscribe(event_bus.AccountLoginFailure, func(e event_bus.Event) error {
		log.Warnf("Login failure for: %v", e.Data)
		return nil
	})
}
