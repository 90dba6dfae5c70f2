package calendar

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type EventDTO struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Source      string    `json:"source"`
}

type MonthCellDTO struct {
	Day       *string `json:"day"`
	HasEvents bool    `json:"hasEvents"`
}

type PositionedEventDTO struct {
	EventDTO
	TopPercent    float64 `json:"topPercent"`
	HeightPercent float64 `json:"heightPercent"`
}

type WeekDayDTO struct {
	Day    string               `json:"day"`
	Events []PositionedEventDTO `json:"events"`
}

type WeekViewDTO struct {
	Start string       `json:"start"`
	Days  []WeekDayDTO `json:"days"`
}

type ImportResultDTO struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Events   []EventDTO `json:"events"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Title == "" {
		rest.WriteError(w, http.StatusBadRequest, "Event title is required", "")
		return
	}

	created, err := h.service.AddEvent(r.Context(), Event{
		Title:       dto.Title,
		Description: dto.Description,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			rest.WriteError(w, http.StatusBadRequest, "Event end time must not precede its start time", "")
			return
		}
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// ListEvents serves GET /api/calendar/event?from=...&to=... with RFC 3339
// bounds. Missing bounds default to the current month.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'from' date format", "")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'to' date format", "")
			return
		}
	}

	events, err := h.service.EventsForRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventUid := mux.Vars(r)["eventUid"]
	if err := h.service.DeleteEvent(r.Context(), eventUid); err != nil {
		switch {
		case errors.Is(err, ErrDerivedEvent):
			rest.WriteError(w, http.StatusConflict, "Vacation entries are derived from company data and cannot be deleted here", "")
		case errors.Is(err, ErrEventNotFound):
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
		default:
			writeServiceError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MonthView serves GET /api/calendar/month?year=YYYY&month=M.
func (h *Handler) MonthView(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var err error
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'year' value", "")
			return
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'month' value", "")
			return
		}
	}

	cells, err := h.service.MonthView(r.Context(), year, time.Month(month))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]MonthCellDTO, 0, len(cells))
	for _, cell := range cells {
		dto := MonthCellDTO{HasEvents: cell.HasEvents}
		if cell.Day != nil {
			day := cell.Day.Format("2006-01-02")
			dto.Day = &day
		}
		dtos = append(dtos, dto)
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// WeekView serves GET /api/calendar/week?date=YYYY-MM-DD. The week shown is
// the Monday-first week containing the date.
func (h *Handler) WeekView(w http.ResponseWriter, r *http.Request) {
	selected := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'date' value", "")
			return
		}
		selected = parsed
	}

	view, err := h.service.WeekViewFor(r.Context(), selected)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days := make([]WeekDayDTO, 0, len(view.Days))
	for _, day := range view.Days {
		events := make([]PositionedEventDTO, 0, len(day.Events))
		for _, e := range day.Events {
			events = append(events, PositionedEventDTO{
				EventDTO:      eventToDTO(e.Event),
				TopPercent:    e.TopPercent,
				HeightPercent: e.HeightPercent,
			})
		}
		days = append(days, WeekDayDTO{Day: day.Day.Format("2006-01-02"), Events: events})
	}
	rest.WriteJSON(w, http.StatusOK, WeekViewDTO{
		Start: view.Start.Format("2006-01-02"),
		Days:  days,
	})
}

// ImportICS accepts raw iCalendar text as the request body.
func (h *Handler) ImportICS(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "Calendar file body is required", "")
		return
	}

	result, err := h.service.ImportICS(r.Context(), string(body))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Debugf("Imported %d calendar events (%d blocks skipped)", result.Imported, result.Skipped)

	events := make([]EventDTO, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, ImportResultDTO{
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Events:   events,
	})
}

func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'from' date format", "")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'to' date format", "")
			return
		}
	}

	serialized, err := h.service.ExportICS(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(serialized)); err != nil {
		log.Errorf("failed to write ICS response: %v", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrNoPrincipal) {
		rest.WriteError(w, http.StatusUnauthorized, "Authentication required", "")
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		UID:         e.UID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Source:      string(e.Source),
	}
}
