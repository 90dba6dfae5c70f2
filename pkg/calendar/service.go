package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/bizmate/bizmate/pkg/ics"
	"github.com/google/uuid"
)

var ErrInvalidRange = errors.New("event end time precedes start time")

type Service interface {
	AddEvent(ctx context.Context, event Event) (Event, error)
	EventsForRange(ctx context.Context, from, to time.Time) ([]Event, error)
	DeleteEvent(ctx context.Context, eventUid string) error
	MonthView(ctx context.Context, year int, month time.Month) ([]MonthCell, error)
	WeekViewFor(ctx context.Context, selected time.Time) (WeekView, error)
	ImportICS(ctx context.Context, text string) (ImportResult, error)
	ExportICS(ctx context.Context, from, to time.Time) (string, error)
}

// ImportResult reports the outcome of an ICS import.
type ImportResult struct {
	Imported int
	Skipped  int
	Events   []Event
}

type ServiceImpl struct {
	repo       Repository
	businesses business.Service
	bus        *event_bus.EventBus
}

func NewService(repo Repository, businesses business.Service, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, businesses: businesses, bus: bus}
}

func (s *ServiceImpl) AddEvent(ctx context.Context, event Event) (Event, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current account: %w", err)
	}
	if event.EndTime.Before(event.StartTime) {
		return Event{}, ErrInvalidRange
	}

	event.UID = uuid.NewString()
	event.Source = SourceManual
	if err := s.repo.StoreEvent(ctx, accountId, event); err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	return event, nil
}

// EventsForRange merges stored events with vacation markers derived from the
// account's companies. Vacation markers are synthesized on every call.
func (s *ServiceImpl) EventsForRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current account: %w", err)
	}

	manual, err := s.repo.GetEvents(ctx, accountId, from, to)
	if err != nil {
		return nil, err
	}

	companies, err := s.businesses.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies for vacations: %w", err)
	}

	merged := make([]Event, 0, len(manual))
	merged = append(merged, manual...)
	for _, e := range ExpandVacations(companies) {
		if !e.StartTime.After(to) && !e.EndTime.Before(from) {
			merged = append(merged, e)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime.Before(merged[j].StartTime)
	})
	return merged, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, eventUid string) error {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current account: %w", err)
	}
	if IsVacationMarker(eventUid) {
		return ErrDerivedEvent
	}
	return s.repo.DeleteEvent(ctx, accountId, eventUid)
}

func (s *ServiceImpl) MonthView(ctx context.Context, year int, month time.Month) ([]MonthCell, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)

	events, err := s.EventsForRange(ctx, first, last)
	if err != nil {
		return nil, err
	}
	return MonthGrid(year, month, events), nil
}

func (s *ServiceImpl) WeekViewFor(ctx context.Context, selected time.Time) (WeekView, error) {
	start := StartOfWeek(selected)
	end := AddDays(start, 7).Add(-time.Nanosecond)

	events, err := s.EventsForRange(ctx, start, end)
	if err != nil {
		return WeekView{}, err
	}
	return Week(selected, events), nil
}

// ImportICS parses calendar text and stores every recovered event. Unparseable
// blocks are counted, not fatal.
func (s *ServiceImpl) ImportICS(ctx context.Context, text string) (ImportResult, error) {
	accountId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to get current account: %w", err)
	}

	parsed := ics.Parse(text)

	result := ImportResult{Skipped: parsed.Skipped}
	for _, imported := range parsed.Events {
		event := Event{
			UID:         uuid.NewString(),
			Title:       imported.Title,
			Description: imported.Description,
			StartTime:   imported.Start,
			EndTime:     imported.End,
			Source:      SourceManual,
		}
		if err := s.repo.StoreEvent(ctx, accountId, event); err != nil {
			return ImportResult{}, fmt.Errorf("failed to store imported event: %w", err)
		}
		result.Events = append(result.Events, event)
		result.Imported++
	}

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarImported, event_bus.ImportStats{
		Imported: result.Imported,
		Skipped:  result.Skipped,
	}))
	return result, nil
}

// ExportICS serializes every event in the range, vacation markers included,
// as an iCalendar document.
func (s *ServiceImpl) ExportICS(ctx context.Context, from, to time.Time) (string, error) {
	events, err := s.EventsForRange(ctx, from, to)
	if err != nil {
		return "", err
	}

	exported := make([]ics.ExportEvent, 0, len(events))
	for _, e := range events {
		exported = append(exported, ics.ExportEvent{
			UID:         e.UID,
			Title:       e.Title,
			Description: e.Description,
			Start:       e.StartTime,
			End:         e.EndTime,
		})
	}
	return ics.Export(exported), nil
}
