package app

import (
	"github.com/bizmate/bizmate/internal/config"
	"github.com/bizmate/bizmate/internal/metrics"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Auth
	r.HandleFunc("/api/auth/register-company", deps.AccountHandler.RegisterCompany).Methods("POST")
	r.HandleFunc("/api/auth/login", deps.AccountHandler.Login).Methods("POST")

	// Business context
	r.HandleFunc("/api/business/{businessId}", deps.BusinessHandler.BusinessContext).Methods("GET")

	// Companies
	r.HandleFunc("/api/company", deps.BusinessHandler.ListCompanies).Methods("GET")
	r.HandleFunc("/api/company", deps.BusinessHandler.CreateCompany).Methods("POST")
	r.HandleFunc("/api/company/{companyId}", deps.BusinessHandler.GetCompany).Methods("GET")
	r.HandleFunc("/api/company/{companyId}", deps.BusinessHandler.UpdateCompany).Methods("PUT")
	r.HandleFunc("/api/company/{companyId}", deps.BusinessHandler.DeleteCompany).Methods("DELETE")
	r.HandleFunc("/api/company/{companyId}/employees/import", deps.BusinessHandler.ImportEmployees).Methods("POST")
	r.HandleFunc("/api/company/{companyId}/employees/export", deps.BusinessHandler.ExportEmployees).Methods("GET")

	// Calendar
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar/month", deps.CalendarHandler.MonthView).Methods("GET")
	r.HandleFunc("/api/calendar/week", deps.CalendarHandler.WeekView).Methods("GET")
	r.HandleFunc("/api/calendar/import", deps.CalendarHandler.ImportICS).Methods("POST")
	r.HandleFunc("/api/calendar/export", deps.CalendarHandler.ExportICS).Methods("GET")

	// Chat
	chatLimiter := newChatRateLimiter(cfg.Chat.RequestsPerMinute)
	r.HandleFunc("/api/chat/session", deps.ChatHandler.CreateSession).Methods("POST")
	r.HandleFunc("/api/chat/session", deps.ChatHandler.ListSessions).Methods("GET")
	r.HandleFunc("/api/chat/session/{sessionId}", deps.ChatHandler.GetSession).Methods("GET")
	r.HandleFunc("/api/chat/session/{sessionId}/message", chatLimiter.Wrap(deps.ChatHandler.SendMessage)).Methods("POST")
	r.HandleFunc("/api/chat/session/{sessionId}/message/{messageId}/favorite", deps.ChatHandler.ToggleFavorite).Methods("PUT")
	r.HandleFunc("/api/chat/favorites", deps.ChatHandler.ListFavorites).Methods("GET")

	// Observability
	r.Handle("/metrics", metrics.Handler(deps.Registry)).Methods("GET")
}
