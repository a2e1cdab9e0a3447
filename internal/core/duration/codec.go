package duration

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// ChronometerT0 is the reference instant of chronometer-mode observations,
// whose reading timestamps are elapsed time rather than wall-clock time
var ChronometerT0 = time.UnixMilli(0).UTC()

// Parts is a duration split into calendar-free units.
// In canonical form every unit but Days is below its carry threshold.
type Parts struct {
	Days         int64 `json:"days" validate:"gte=0"`
	Hours        int64 `json:"hours" validate:"gte=0,lt=24"`
	Minutes      int64 `json:"minutes" validate:"gte=0,lt=60"`
	Seconds      int64 `json:"seconds" validate:"gte=0,lt=60"`
	Milliseconds int64 `json:"milliseconds" validate:"gte=0,lt=1000"`
}

// "ms" must come before "m" and "s" so that "500ms" is not read as minutes
var compactToken = regexp.MustCompile(`(\d+)(ms|j|h|m|s)`)

var validate = validator.New()

// MillisecondsToParts decomposes a non-negative millisecond count
func MillisecondsToParts(ms int64) Parts {
	return Parts{
		Days:         ms / msPerDay,
		Hours:        ms % msPerDay / msPerHour,
		Minutes:      ms % msPerHour / msPerMinute,
		Seconds:      ms % msPerMinute / msPerSecond,
		Milliseconds: ms % msPerSecond,
	}
}

// PartsToMilliseconds is the linear inverse of MillisecondsToParts. Parts out
// of their canonical range are accepted as is.
func PartsToMilliseconds(p Parts) int64 {
	return p.Days*msPerDay +
		p.Hours*msPerHour +
		p.Minutes*msPerMinute +
		p.Seconds*msPerSecond +
		p.Milliseconds
}

// FormatCompact renders a duration as "2j 3h 15m 30s 500ms", omitting zero
// units. The result is never empty: zero renders as "0ms".
func FormatCompact(ms int64) string {
	p := MillisecondsToParts(ms)
	components := make([]string, 0, 5)

	if p.Days > 0 {
		components = append(components, strconv.FormatInt(p.Days, 10)+"j")
	}
	if p.Hours > 0 {
		components = append(components, strconv.FormatInt(p.Hours, 10)+"h")
	}
	if p.Minutes > 0 {
		components = append(components, strconv.FormatInt(p.Minutes, 10)+"m")
	}
	if p.Seconds > 0 {
		components = append(components, strconv.FormatInt(p.Seconds, 10)+"s")
	}
	if p.Milliseconds > 0 || len(components) == 0 {
		components = append(components, strconv.FormatInt(p.Milliseconds, 10)+"ms")
	}

	return strings.Join(components, " ")
}

// ParseCompact reads a compact duration in any unit order. Text that is not a
// token is ignored; a unit given twice keeps its last value. Unparseable input
// yields 0.
func ParseCompact(s string) int64 {
	var p Parts
	for _, m := range compactToken.FindAllStringSubmatch(s, -1) {
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "j":
			p.Days = value
		case "h":
			p.Hours = value
		case "ms":
			p.Milliseconds = value
		case "m":
			p.Minutes = value
		case "s":
			p.Seconds = value
		}
	}
	return PartsToMilliseconds(p)
}

// ValidateParts reports whether every unit is within its canonical range
func ValidateParts(p Parts) bool {
	return validate.Struct(p) == nil
}

// FormatFromDate formats the time elapsed between t0 and t
func FormatFromDate(t, t0 time.Time) string {
	return FormatCompact(DateToDuration(t, t0))
}

// DurationToDate returns the instant ms milliseconds after t0
func DurationToDate(ms int64, t0 time.Time) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// DateToDuration returns the milliseconds elapsed from t0 to t
func DateToDuration(t, t0 time.Time) int64 {
	return t.Sub(t0).Milliseconds()
}
