package model

import (
	"fmt"
	"strconv"
	"time"
)

// ReadingType is the kind of event a reading records
type ReadingType int

const (
	ReadingStart ReadingType = iota
	ReadingStop
	ReadingPauseStart
	ReadingPauseEnd
	ReadingData
)

// String returns the wire value used by the observation files
func (t ReadingType) String() string {
	switch t {
	case ReadingStart:
		return "start"
	case ReadingStop:
		return "stop"
	case ReadingPauseStart:
		return "pause_start"
	case ReadingPauseEnd:
		return "pause_end"
	case ReadingData:
		return "data"
	default:
		return "unknown"
	}
}

// ParseReadingType converts a wire value to a ReadingType
func ParseReadingType(s string) (ReadingType, error) {
	switch s {
	case "start":
		return ReadingStart, nil
	case "stop":
		return ReadingStop, nil
	case "pause_start":
		return ReadingPauseStart, nil
	case "pause_end":
		return ReadingPauseEnd, nil
	case "data":
		return ReadingData, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownReadingType, s)
	}
}

func (t ReadingType) MarshalText() ([]byte, error) {
	if t < ReadingStart || t > ReadingData {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReadingType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *ReadingType) UnmarshalText(data []byte) error {
	parsed, err := ParseReadingType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsBoundary reports whether the type delimits the session (start or stop)
func (t ReadingType) IsBoundary() bool {
	return t == ReadingStart || t == ReadingStop
}

type idKind uint8

const (
	idNone idKind = iota
	idPersisted
	idTemporary
)

// ReadingID identifies a reading either by its persisted database id or by
// the temporary id a client assigns before the reading is saved.
// The zero value is an anonymous reading that matches nothing.
type ReadingID struct {
	kind      idKind
	persisted int64
	temporary string
}

// PersistedID returns the identity of a stored reading
func PersistedID(id int64) ReadingID {
	return ReadingID{kind: idPersisted, persisted: id}
}

// TemporaryID returns the identity of a reading not yet stored
func TemporaryID(id string) ReadingID {
	if id == "" {
		return ReadingID{}
	}
	return ReadingID{kind: idTemporary, temporary: id}
}

func (id ReadingID) IsZero() bool {
	return id.kind == idNone
}

// Persisted returns the database id, if any
func (id ReadingID) Persisted() (int64, bool) {
	return id.persisted, id.kind == idPersisted
}

// Temporary returns the client-side id, if any
func (id ReadingID) Temporary() (string, bool) {
	return id.temporary, id.kind == idTemporary
}

// Equal reports whether both ids designate the same reading.
// Anonymous ids are never equal, not even to themselves.
func (id ReadingID) Equal(other ReadingID) bool {
	if id.kind == idNone || id.kind != other.kind {
		return false
	}
	if id.kind == idPersisted {
		return id.persisted == other.persisted
	}
	return id.temporary == other.temporary
}

func (id ReadingID) String() string {
	switch id.kind {
	case idPersisted:
		return "#" + strconv.FormatInt(id.persisted, 10)
	case idTemporary:
		return id.temporary
	default:
		return "-"
	}
}

// Reading is a single timestamped event of an observation session
type Reading struct {
	ID          ReadingID
	Name        string
	Description string
	Type        ReadingType
	DateTime    time.Time
}

// Millis returns the reading timestamp as Unix milliseconds
func (r Reading) Millis() int64 {
	return r.DateTime.UnixMilli()
}

func (r Reading) String() string {
	if r.Type == ReadingData {
		return fmt.Sprintf("%s(%q)@%d", r.Type, r.Name, r.Millis())
	}
	return fmt.Sprintf("%s@%d", r.Type, r.Millis())
}

// FingerprintFields exposes the content that identifies a reading in a list
// fingerprint
func (r Reading) FingerprintFields() (string, string, string, string, time.Time) {
	return r.Type.String(), r.ID.String(), r.Name, r.Description, r.DateTime
}

// IsComment reports whether a data reading is a free-text comment
func (r Reading) IsComment() bool {
	return r.Type == ReadingData && len(r.Name) > 0 && r.Name[0] == CommentPrefix
}

// At converts Unix milliseconds to a UTC instant
func At(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// CloneReadings returns a new slice holding copies of the readings
func CloneReadings(readings []Reading) []Reading {
	if readings == nil {
		return nil
	}
	out := make([]Reading, len(readings))
	copy(out, readings)
	return out
}
