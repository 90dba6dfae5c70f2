package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccountId = "account-1"

func testContext() context.Context {
	return auth.WithClaims(context.Background(), auth.Claims{
		UserId:     testAccountId,
		BusinessId: "business-1",
	})
}

func newTestService(t *testing.T) (*ServiceImpl, *RepositoryStub, *business.RepositoryStub) {
	t.Helper()
	repo := NewRepositoryStub()
	businessRepo := business.NewRepositoryStub()
	bus := event_bus.NewEventBus()
	businessService := business.NewService(businessRepo, bus)
	return NewService(repo, businessService, bus), repo, businessRepo
}

func storeCompanyWithVacation(t *testing.T, repo *business.RepositoryStub, start, end string) {
	t.Helper()
	err := repo.StoreCompany(context.Background(), testAccountId, business.Company{
		Id:   "company-1",
		Name: "Acme",
		Vacations: []business.Vacation{{
			Id:           "vacation-1",
			EmployeeName: "Jan Kowalski",
			StartDate:    start,
			EndDate:      end,
		}},
	})
	require.NoError(t, err)
}

func TestServiceImpl_AddEvent(t *testing.T) {
	t.Run("stores a manual event and assigns a uid", func(t *testing.T) {
		service, _, _ := newTestService(t)
		ctx := testContext()

		created, err := service.AddEvent(ctx, Event{
			Title:     "Board meeting",
			StartTime: time.Date(2025, 5, 10, 10, 0, 0, 0, time.Local),
			EndTime:   time.Date(2025, 5, 10, 11, 0, 0, 0, time.Local),
		})

		require.NoError(t, err)
		assert.NotEmpty(t, created.UID)
		assert.Equal(t, SourceManual, created.Source)
	})

	t.Run("rejects an event ending before it starts", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.AddEvent(testContext(), Event{
			Title:     "Impossible",
			StartTime: time.Date(2025, 5, 10, 11, 0, 0, 0, time.Local),
			EndTime:   time.Date(2025, 5, 10, 10, 0, 0, 0, time.Local),
		})

		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("requires an authenticated principal", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.AddEvent(context.Background(), Event{Title: "No auth"})

		assert.ErrorIs(t, err, auth.ErrNoPrincipal)
	})
}

func TestServiceImpl_EventsForRange(t *testing.T) {
	t.Run("merges manual events with vacation markers ordered by start", func(t *testing.T) {
		service, _, businessRepo := newTestService(t)
		ctx := testContext()
		storeCompanyWithVacation(t, businessRepo, "2025-05-12", "2025-05-12")

		_, err := service.AddEvent(ctx, Event{
			Title:     "Board meeting",
			StartTime: time.Date(2025, 5, 12, 10, 0, 0, 0, time.Local),
			EndTime:   time.Date(2025, 5, 12, 11, 0, 0, 0, time.Local),
		})
		require.NoError(t, err)

		events, err := service.EventsForRange(ctx,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 5, 31, 23, 59, 59, 0, time.Local))

		require.NoError(t, err)
		require.Len(t, events, 2)
		// Vacation marker sits at 07:00, before the 10:00 meeting.
		assert.Equal(t, SourceVacation, events[0].Source)
		assert.Equal(t, "Board meeting", events[1].Title)
	})

	t.Run("vacation markers outside the range are dropped", func(t *testing.T) {
		service, _, businessRepo := newTestService(t)
		storeCompanyWithVacation(t, businessRepo, "2025-06-01", "2025-06-03")

		events, err := service.EventsForRange(testContext(),
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 5, 31, 23, 59, 59, 0, time.Local))

		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestServiceImpl_DeleteEvent(t *testing.T) {
	t.Run("deletes a stored manual event", func(t *testing.T) {
		service, _, _ := newTestService(t)
		ctx := testContext()

		created, err := service.AddEvent(ctx, Event{
			Title:     "Temporary",
			StartTime: time.Date(2025, 5, 12, 10, 0, 0, 0, time.Local),
			EndTime:   time.Date(2025, 5, 12, 11, 0, 0, 0, time.Local),
		})
		require.NoError(t, err)

		require.NoError(t, service.DeleteEvent(ctx, created.UID))

		events, err := service.EventsForRange(ctx,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 5, 31, 0, 0, 0, 0, time.Local))
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("refuses to delete a derived vacation marker", func(t *testing.T) {
		service, _, _ := newTestService(t)

		err := service.DeleteEvent(testContext(), "vac-company-1-vacation-1-2025-05-12")

		assert.ErrorIs(t, err, ErrDerivedEvent)
	})

	t.Run("unknown uid yields not found", func(t *testing.T) {
		service, _, _ := newTestService(t)

		err := service.DeleteEvent(testContext(), "does-not-exist")

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestServiceImpl_ImportICS(t *testing.T) {
	t.Run("stores parsed events and reports skipped blocks", func(t *testing.T) {
		service, _, _ := newTestService(t)
		ctx := testContext()
		text := "BEGIN:VEVENT\n" +
			"SUMMARY:Daily standup\n" +
			"DTSTART:20250512T093000\n" +
			"DTEND:20250512T094500\n" +
			"END:VEVENT\n" +
			"BEGIN:VEVENT\n" +
			"SUMMARY:Broken\n" +
			"END:VEVENT\n"

		result, err := service.ImportICS(ctx, text)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Events, 1)

		events, err := service.EventsForRange(ctx,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 5, 31, 0, 0, 0, 0, time.Local))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Daily standup", events[0].Title)
		assert.Equal(t, SourceManual, events[0].Source)
	})
}

func TestServiceImpl_ExportICS(t *testing.T) {
	t.Run("serializes stored events as iCalendar", func(t *testing.T) {
		service, _, _ := newTestService(t)
		ctx := testContext()

		_, err := service.AddEvent(ctx, Event{
			Title:     "Inventory check",
			StartTime: time.Date(2025, 5, 12, 9, 0, 0, 0, time.Local),
			EndTime:   time.Date(2025, 5, 12, 10, 0, 0, 0, time.Local),
		})
		require.NoError(t, err)

		serialized, err := service.ExportICS(ctx,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 5, 31, 0, 0, 0, 0, time.Local))

		require.NoError(t, err)
		assert.Contains(t, serialized, "BEGIN:VCALENDAR")
		assert.Contains(t, serialized, "SUMMARY:Inventory check")
	})
}

func TestServiceImpl_Views(t *testing.T) {
	t.Run("month view flags vacation days", func(t *testing.T) {
		service, _, businessRepo := newTestService(t)
		storeCompanyWithVacation(t, businessRepo, "2025-05-12", "2025-05-14")

		cells, err := service.MonthView(testContext(), 2025, time.May)

		require.NoError(t, err)
		marked := make(map[int]bool)
		for _, cell := range cells {
			if cell.Day != nil && cell.HasEvents {
				marked[cell.Day.Day()] = true
			}
		}
		assert.Equal(t, map[int]bool{12: true, 13: true, 14: true}, marked)
	})

	t.Run("week view positions the vacation marker slot", func(t *testing.T) {
		service, _, businessRepo := newTestService(t)
		storeCompanyWithVacation(t, businessRepo, "2025-05-12", "2025-05-12")

		view, err := service.WeekViewFor(testContext(), time.Date(2025, 5, 14, 0, 0, 0, 0, time.Local))

		require.NoError(t, err)
		require.Len(t, view.Days, 7)
		require.Len(t, view.Days[0].Events, 1)
		marker := view.Days[0].Events[0]
		assert.Equal(t, VacationTitle, marker.Title)
		assert.InDelta(t, 7.0/24*100, marker.TopPercent, 0.001)
		assert.InDelta(t, 1.0/24*100, marker.HeightPercent, 0.001)
	})
}
