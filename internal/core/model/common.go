package model

import (
	"errors"
	"time"
)

// Default names given to readings synthesized by the correction pass
const (
	NameStop       = "End of observation"
	NamePauseStart = "Pause start"
	NamePauseEnd   = "Pause end"
)

// CommentPrefix marks a data reading as a comment rather than an observable
const CommentPrefix = '#'

// Observation modes
const (
	ModeCalendar    = "calendar"
	ModeChronometer = "chronometer"
)

var ErrUnknownReadingType = errors.New("unknown reading type")

// Period is a half-open time interval [Start, End)
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Duration() time.Duration {
	if !p.End.After(p.Start) {
		return 0
	}
	return p.End.Sub(p.Start)
}

// FileEvent represents a file system event on a watched readings file
type FileEvent struct {
	Path      string
	Operation string
}
