package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGrid(t *testing.T) {
	t.Run("cell count is always a multiple of seven", func(t *testing.T) {
		months := []struct {
			year  int
			month time.Month
		}{
			{2025, time.February}, // non-leap February
			{2024, time.February}, // leap February
			{2025, time.March},
			{2025, time.June},
			{2026, time.August},
		}
		for _, m := range months {
			cells := MonthGrid(m.year, m.month, nil)
			assert.Zero(t, len(cells)%7, "%d-%d", m.year, m.month)
		}
	})

	t.Run("leading cells pad to Monday", func(t *testing.T) {
		// 2025-05-01 is a Thursday: three leading nil cells.
		cells := MonthGrid(2025, time.May, nil)

		require.GreaterOrEqual(t, len(cells), 31)
		assert.Nil(t, cells[0].Day)
		assert.Nil(t, cells[1].Day)
		assert.Nil(t, cells[2].Day)
		require.NotNil(t, cells[3].Day)
		assert.Equal(t, 1, cells[3].Day.Day())
	})

	t.Run("contains every day of the month exactly once", func(t *testing.T) {
		cells := MonthGrid(2024, time.February, nil)

		var days []int
		for _, cell := range cells {
			if cell.Day != nil {
				days = append(days, cell.Day.Day())
			}
		}
		require.Len(t, days, 29)
		assert.Equal(t, 1, days[0])
		assert.Equal(t, 29, days[28])
	})

	t.Run("flags days that have events", func(t *testing.T) {
		events := []Event{
			{
				UID:       "e1",
				StartTime: time.Date(2025, 5, 10, 14, 0, 0, 0, time.Local),
				EndTime:   time.Date(2025, 5, 10, 15, 0, 0, 0, time.Local),
			},
		}

		cells := MonthGrid(2025, time.May, events)

		for _, cell := range cells {
			if cell.Day == nil {
				continue
			}
			if cell.Day.Day() == 10 {
				assert.True(t, cell.HasEvents)
			} else {
				assert.False(t, cell.HasEvents, "day %d", cell.Day.Day())
			}
		}
	})
}

func TestWeek(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

	t.Run("window starts on the Monday of the selected week", func(t *testing.T) {
		view := Week(monday.AddDate(0, 0, 3), nil)

		assert.Equal(t, monday, view.Start)
		require.Len(t, view.Days, 7)
		assert.Equal(t, monday, view.Days[0].Day)
		assert.Equal(t, monday.AddDate(0, 0, 6), view.Days[6].Day)
	})

	t.Run("only events starting inside the window are shown", func(t *testing.T) {
		events := []Event{
			{UID: "before", StartTime: monday.Add(-time.Hour), EndTime: monday},
			{UID: "inside", StartTime: monday.Add(10 * time.Hour), EndTime: monday.Add(11 * time.Hour)},
			{UID: "after", StartTime: monday.AddDate(0, 0, 7), EndTime: monday.AddDate(0, 0, 7).Add(time.Hour)},
		}

		view := Week(monday, events)

		var uids []string
		for _, day := range view.Days {
			for _, e := range day.Events {
				uids = append(uids, e.UID)
			}
		}
		assert.Equal(t, []string{"inside"}, uids)
	})

	t.Run("events land on their start day in start order", func(t *testing.T) {
		wednesday := monday.AddDate(0, 0, 2)
		events := []Event{
			{UID: "late", StartTime: wednesday.Add(16 * time.Hour), EndTime: wednesday.Add(17 * time.Hour)},
			{UID: "early", StartTime: wednesday.Add(9 * time.Hour), EndTime: wednesday.Add(10 * time.Hour)},
		}

		view := Week(monday, events)

		require.Len(t, view.Days[2].Events, 2)
		assert.Equal(t, "early", view.Days[2].Events[0].UID)
		assert.Equal(t, "late", view.Days[2].Events[1].UID)
		assert.Empty(t, view.Days[0].Events)
	})

	t.Run("geometry maps hours to percentages of a 24h day", func(t *testing.T) {
		events := []Event{{
			UID:       "meeting",
			StartTime: monday.Add(6 * time.Hour),                // 06:00
			EndTime:   monday.Add(12*time.Hour + 30*time.Minute), // 12:30
		}}

		view := Week(monday, events)

		require.Len(t, view.Days[0].Events, 1)
		positioned := view.Days[0].Events[0]
		assert.InDelta(t, 25.0, positioned.TopPercent, 0.001)
		assert.InDelta(t, 27.083, positioned.HeightPercent, 0.01)
	})
}
