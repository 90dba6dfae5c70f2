package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("parses a daily standup event", func(t *testing.T) {
		text := "BEGIN:VCALENDAR\n" +
			"VERSION:2.0\n" +
			"BEGIN:VEVENT\n" +
			"SUMMARY:Daily standup\n" +
			"DTSTART:20250310T093000\n" +
			"DTEND:20250310T094500\n" +
			"DESCRIPTION:Team sync: blockers and plans\n" +
			"END:VEVENT\n" +
			"END:VCALENDAR\n"

		result := Parse(text)

		require.Len(t, result.Events, 1)
		e := result.Events[0]
		assert.Equal(t, "Daily standup", e.Title)
		assert.Equal(t, "Team sync: blockers and plans", e.Description)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local), e.Start)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 45, 0, 0, time.Local), e.End)
		assert.Equal(t, 0, result.Skipped)
	})

	t.Run("recovers good blocks and counts bad ones", func(t *testing.T) {
		text := "BEGIN:VEVENT\n" +
			"SUMMARY:Good one\n" +
			"DTSTART:20250301\n" +
			"END:VEVENT\n" +
			"BEGIN:VEVENT\n" +
			"SUMMARY:No start date\n" +
			"END:VEVENT\n" +
			"BEGIN:VEVENT\n" +
			"SUMMARY:Broken start\n" +
			"DTSTART:not-a-date\n" +
			"END:VEVENT\n" +
			"BEGIN:VEVENT\n" +
			"SUMMARY:Another good one\n" +
			"DTSTART:20250302T120000\n" +
			"END:VEVENT\n"

		result := Parse(text)

		require.Len(t, result.Events, 2)
		assert.Equal(t, "Good one", result.Events[0].Title)
		assert.Equal(t, "Another good one", result.Events[1].Title)
		assert.Equal(t, 2, result.Skipped)
	})

	t.Run("missing DTEND reuses the start", func(t *testing.T) {
		text := "BEGIN:VEVENT\nSUMMARY:All day\nDTSTART:20250415\nEND:VEVENT\n"

		result := Parse(text)

		require.Len(t, result.Events, 1)
		assert.Equal(t, result.Events[0].Start, result.Events[0].End)
	})

	t.Run("missing SUMMARY falls back to the placeholder title", func(t *testing.T) {
		text := "BEGIN:VEVENT\nDTSTART:20250415\nEND:VEVENT\n"

		result := Parse(text)

		require.Len(t, result.Events, 1)
		assert.Equal(t, DefaultTitle, result.Events[0].Title)
	})

	t.Run("trailing Z is stripped and read as local time", func(t *testing.T) {
		text := "BEGIN:VEVENT\nSUMMARY:UTC marked\nDTSTART:20250415T083000Z\nEND:VEVENT\n"

		result := Parse(text)

		require.Len(t, result.Events, 1)
		assert.Equal(t, time.Date(2025, 4, 15, 8, 30, 0, 0, time.Local), result.Events[0].Start)
	})

	t.Run("property parameters before the colon are ignored", func(t *testing.T) {
		text := "BEGIN:VEVENT\n" +
			"SUMMARY;LANGUAGE=en:Planning\n" +
			"DTSTART;TZID=Europe/Warsaw:20250415T100000\n" +
			"END:VEVENT\n"

		result := Parse(text)

		require.Len(t, result.Events, 1)
		assert.Equal(t, "Planning", result.Events[0].Title)
		assert.Equal(t, time.Date(2025, 4, 15, 10, 0, 0, 0, time.Local), result.Events[0].Start)
	})

	t.Run("preserves block order without deduplication", func(t *testing.T) {
		block := "BEGIN:VEVENT\nSUMMARY:Repeated\nDTSTART:20250501\nEND:VEVENT\n"
		result := Parse(block + block)

		require.Len(t, result.Events, 2)
		assert.Equal(t, result.Events[0], result.Events[1])
	})

	t.Run("text without any VEVENT yields nothing", func(t *testing.T) {
		result := Parse("BEGIN:VCALENDAR\nEND:VCALENDAR\n")
		assert.Empty(t, result.Events)
		assert.Equal(t, 0, result.Skipped)
	})
}

func TestExport(t *testing.T) {
	t.Run("serializes events into a VCALENDAR document", func(t *testing.T) {
		serialized := Export([]ExportEvent{
			{
				UID:         "event-1",
				Title:       "Board meeting",
				Description: "Quarterly review",
				Start:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
				End:         time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
			},
		})

		assert.Contains(t, serialized, "BEGIN:VCALENDAR")
		assert.Contains(t, serialized, "BEGIN:VEVENT")
		assert.Contains(t, serialized, "SUMMARY:Board meeting")
		assert.Contains(t, serialized, "UID:event-1")
		assert.Contains(t, serialized, "END:VCALENDAR")
	})

	t.Run("round trips through the import parser", func(t *testing.T) {
		serialized := Export([]ExportEvent{
			{
				UID:   "event-2",
				Title: "Inventory check",
				Start: time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local),
				End:   time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local),
			},
		})
		// Normalize folded lines before feeding the tolerant parser.
		unfolded := strings.ReplaceAll(serialized, "\r\n ", "")

		result := Parse(unfolded)

		require.Len(t, result.Events, 1)
		assert.Equal(t, "Inventory check", result.Events[0].Title)
	})
}
