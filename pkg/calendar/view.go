package calendar

import (
	"sort"
	"time"
)

// MonthCell is one cell of the month grid. Nil-day cells pad the grid so the
// first row starts on Monday and the total is a multiple of seven.
type MonthCell struct {
	Day       *time.Time
	HasEvents bool
}

// WeekDay is one column of the week view.
type WeekDay struct {
	Day    time.Time
	Events []PositionedEvent
}

// PositionedEvent augments an event with its vertical placement on a fixed
// 24-hour scale, expressed as percentages for rendering.
type PositionedEvent struct {
	Event
	TopPercent    float64
	HeightPercent float64
}

// WeekView is the Monday-first week containing a selected day.
type WeekView struct {
	Start time.Time
	Days  []WeekDay
}

// MonthGrid enumerates every day of the given month and pads leading and
// trailing cells with nils for a 7-column Monday-first layout. A day is marked
// when any event, manual or vacation, starts on it.
func MonthGrid(year int, month time.Month, events []Event) []MonthCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)

	leading := (int(first.Weekday()) + 6) % 7

	cells := make([]MonthCell, 0, leading+last.Day()+6)
	for i := 0; i < leading; i++ {
		cells = append(cells, MonthCell{})
	}
	for d := 1; d <= last.Day(); d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.Local)
		cells = append(cells, MonthCell{
			Day:       &day,
			HasEvents: anyEventOn(events, day),
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, MonthCell{})
	}
	return cells
}

// Week builds the week view for the week containing selected. Events are
// included when their start falls inside the 7-day Monday-first window, and
// placed by start/end hour-and-minute fraction of a 24-hour day.
func Week(selected time.Time, events []Event) WeekView {
	start := StartOfWeek(selected)
	end := AddDays(start, 7)

	inWindow := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.StartTime.Before(start) && e.StartTime.Before(end) {
			inWindow = append(inWindow, e)
		}
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].StartTime.Before(inWindow[j].StartTime)
	})

	days := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		day := AddDays(start, i)
		column := WeekDay{Day: day}
		for _, e := range inWindow {
			if IsSameDay(e.StartTime, day) {
				column.Events = append(column.Events, position(e))
			}
		}
		days = append(days, column)
	}

	return WeekView{Start: start, Days: days}
}

func position(e Event) PositionedEvent {
	startHour := float64(e.StartTime.Hour()) + float64(e.StartTime.Minute())/60
	endHour := float64(e.EndTime.Hour()) + float64(e.EndTime.Minute())/60
	return PositionedEvent{
		Event:         e,
		TopPercent:    startHour / 24 * 100,
		HeightPercent: (endHour - startHour) / 24 * 100,
	}
}

func anyEventOn(events []Event, day time.Time) bool {
	for _, e := range events {
		if IsSameDay(e.StartTime, day) {
			return true
		}
	}
	return false
}
