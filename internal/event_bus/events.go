package event_bus

// Domain event types published by services. Subscribers are wired in
// internal/app (audit logging, metrics).
const (
	CompanyCreated      EventType = "business.company.created"
	CompanyUpdated      EventType = "business.company.updated"
	CompanyDeleted      EventType = "business.company.deleted"
	EmployeesImported   EventType = "business.employees.imported"
	CalendarImported    EventType = "calendar.events.imported"
	ChatMessageSent     EventType = "chat.message.sent"
	ChatMessageFavored  EventType = "chat.message.favorited"
	AccountRegistered   EventType = "account.registered"
	AccountLoggedIn     EventType = "account.logged_in"
	AccountLoginFailure EventType = "account.login_failed"
)

// ImportStats is the payload for EmployeesImported and CalendarImported.
type ImportStats struct {
	Imported int
	Skipped  int
}

// ChatStats is the payload for ChatMessageSent.
type ChatStats struct {
	SessionId string
	Mode      string
	ToolUsed  bool
}
