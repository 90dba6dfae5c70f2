package calendar

import (
	"errors"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
	// ErrDerivedEvent is returned when a caller tries to delete a
	// vacation-sourced entry. Those are synthesized on every read, never
	// stored, so there is nothing to delete.
	ErrDerivedEvent = errors.New("vacation events are derived and cannot be deleted")
)

// Source tags where a calendar entry came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceVacation Source = "vacation"
)

type Event struct {
	UID         string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Source      Source
}
