package ics

import (
	"regexp"
	"strings"
	"time"
)

// ImportedEvent is the normalized output of the tolerant ICS import parser.
type ImportedEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// ParseResult carries the parsed events plus how many VEVENT blocks were
// dropped for lacking a parseable start date.
type ParseResult struct {
	Events  []ImportedEvent
	Skipped int
}

// DefaultTitle is used when a VEVENT carries no SUMMARY.
const DefaultTitle = "Imported event"

var dateToken = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(?:T(\d{2})(\d{2})(\d{2})?)?$`)

// Parse extracts events from raw iCalendar text.
//
// The parser is tolerance-first: the text is split on BEGIN:VEVENT markers and
// each block is scanned line by line for SUMMARY, DTSTART, DTEND and
// DESCRIPTION prefixes, taking everything after the first colon as the value.
// A block without a parseable DTSTART is dropped; a missing DTEND reuses the
// start. Output order matches block order and nothing is de-duplicated.
//
// A trailing Z on a date token is stripped before parsing, so UTC-suffixed
// timestamps are read as local time. This mirrors the behavior of the system
// this importer replaces; it is a documented simplification, not a UTC
// conversion.
func Parse(text string) ParseResult {
	var result ParseResult

	blocks := strings.Split(text, "BEGIN:VEVENT")
	if len(blocks) < 2 {
		return result
	}

	for _, block := range blocks[1:] {
		var summary, dtStart, dtEnd, description string

		for _, rawLine := range strings.Split(block, "\n") {
			line := strings.TrimSpace(rawLine)
			switch {
			case strings.HasPrefix(line, "SUMMARY"):
				summary = valueAfterColon(line)
			case strings.HasPrefix(line, "DTSTART"):
				dtStart = valueAfterColon(line)
			case strings.HasPrefix(line, "DTEND"):
				dtEnd = valueAfterColon(line)
			case strings.HasPrefix(line, "DESCRIPTION"):
				description = valueAfterColon(line)
			}
		}

		start, ok := parseDateToken(dtStart)
		if !ok {
			result.Skipped++
			continue
		}
		end, ok := parseDateToken(dtEnd)
		if !ok {
			end = start
		}

		title := summary
		if title == "" {
			title = DefaultTitle
		}

		result.Events = append(result.Events, ImportedEvent{
			Title:       title,
			Description: description,
			Start:       start,
			End:         end,
		})
	}

	return result
}

// valueAfterColon returns the substring after the first colon; colons inside
// the value are preserved.
func valueAfterColon(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return line[i+1:]
	}
	return ""
}

// parseDateToken parses YYYYMMDD optionally followed by THHMMSS as a local
// date-time. A trailing Z is stripped first.
func parseDateToken(value string) (time.Time, bool) {
	v := strings.TrimSuffix(strings.TrimSpace(value), "Z")
	m := dateToken.FindStringSubmatch(v)
	if m == nil {
		return time.Time{}, false
	}

	layout := "20060102"
	if m[4] != "" {
		if m[6] != "" {
			layout = "20060102T150405"
		} else {
			layout = "20060102T1504"
		}
	}
	t, err := time.ParseInLocation(layout, v, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
