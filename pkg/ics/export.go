package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

// ExportEvent is one calendar entry to serialize. Vacation markers are derived
// data and are never exported.
type ExportEvent struct {
	UID         string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// Export builds an iCalendar document from the given events. Unlike the
// import side, export goes through golang-ical so the output is
// standards-compliant (folding, escaping, VCALENDAR envelope).
func Export(events []ExportEvent) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//bizmate//calendar//EN")

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetDtStampTime(time.Now())
	}

	return cal.Serialize()
}
