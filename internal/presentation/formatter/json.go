package formatter

import (
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/core/timeline"
)

const jsonTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type jsonReading struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DateTime    string `json:"dateTime"`
	Display     string `json:"display"`
}

type jsonAction struct {
	Kind        string       `json:"kind"`
	Description string       `json:"description"`
	IDs         []string     `json:"ids,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	TargetID    string       `json:"targetId,omitempty"`
	NewDateTime string       `json:"newDateTime,omitempty"`
	NewReading  *jsonReading `json:"newReading,omitempty"`
}

type jsonSegment struct {
	Observable string `json:"observable"`
	Start      string `json:"start"`
	End        string `json:"end,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Open       bool   `json:"open,omitempty"`
}

type jsonTimeline struct {
	Category string           `json:"category"`
	Points   []timeline.Point `json:"points"`
	Segments []jsonSegment    `json:"segments"`
}

type jsonObservableStats struct {
	Name       string  `json:"name"`
	DurationMs int64   `json:"durationMs"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
}

type jsonCategoryStats struct {
	Category    string                `json:"category"`
	Continuous  bool                  `json:"continuous"`
	Observables []jsonObservableStats `json:"observables"`
}

type jsonPeriod struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	DurationMs int64  `json:"durationMs"`
}

type jsonStatistics struct {
	Condition           string              `json:"condition,omitempty"`
	Selection           []jsonPeriod        `json:"selection,omitempty"`
	Start               string              `json:"start"`
	End                 string              `json:"end"`
	TotalDurationMs     int64               `json:"totalDurationMs"`
	PauseDurationMs     int64               `json:"pauseDurationMs"`
	EffectiveDurationMs int64               `json:"effectiveDurationMs"`
	PauseCount          int                 `json:"pauseCount"`
	ReadingCount        int                 `json:"readingCount"`
	Categories          []jsonCategoryStats `json:"categories"`
}

type jsonReport struct {
	Title           string          `json:"title,omitempty"`
	Source          string          `json:"source,omitempty"`
	Mode            string          `json:"mode,omitempty"`
	NeedsCorrection *bool           `json:"needsCorrection,omitempty"`
	Actions         []jsonAction    `json:"actions,omitempty"`
	Readings        []jsonReading   `json:"readings,omitempty"`
	Timelines       []jsonTimeline  `json:"timelines,omitempty"`
	Statistics      *jsonStatistics `json:"statistics,omitempty"`
	Dropped         []string        `json:"dropped,omitempty"`
}

// JSONFormatter renders a report as indented JSON with millisecond timestamps
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(w io.Writer, report Report) error {
	data, err := sonic.MarshalIndent(toJSONReport(report), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func toJSONReport(r Report) jsonReport {
	out := jsonReport{Title: r.Title, Source: r.Source, Mode: r.Mode, Dropped: r.Dropped}

	if r.Corrections != nil {
		needs := r.Corrections.NeedsCorrection()
		out.NeedsCorrection = &needs
		out.Actions = make([]jsonAction, len(r.Corrections.Actions))
		for i, a := range r.Corrections.Actions {
			out.Actions[i] = toJSONAction(r, a)
		}
	}

	for _, reading := range r.Readings {
		out.Readings = append(out.Readings, toJSONReading(r, reading))
	}

	for _, ct := range r.Timelines {
		jt := jsonTimeline{Category: ct.Category, Points: ct.Points, Segments: []jsonSegment{}}
		for _, s := range timeline.Segments(ct.Points) {
			js := jsonSegment{Observable: s.Observable, Start: jsonTime(s.Start), Open: s.Open}
			if !s.Open {
				js.End = jsonTime(s.End)
				js.DurationMs = s.Duration().Milliseconds()
			}
			jt.Segments = append(jt.Segments, js)
		}
		out.Timelines = append(out.Timelines, jt)
	}

	if st := r.Statistics; st != nil {
		js := &jsonStatistics{
			Start:               jsonTime(st.Start),
			End:                 jsonTime(st.End),
			TotalDurationMs:     st.TotalDuration.Milliseconds(),
			PauseDurationMs:     st.PauseDuration.Milliseconds(),
			EffectiveDurationMs: st.EffectiveDuration.Milliseconds(),
			PauseCount:          st.PauseCount,
			ReadingCount:        st.ReadingCount,
			Categories:          []jsonCategoryStats{},
			Condition:           st.Condition,
		}
		for _, p := range st.Selection {
			js.Selection = append(js.Selection, jsonPeriod{
				Start:      jsonTime(p.Start),
				End:        jsonTime(p.End),
				DurationMs: p.Duration().Milliseconds(),
			})
		}
		for _, c := range st.Categories {
			jc := jsonCategoryStats{Category: c.Category, Continuous: c.Continuous, Observables: []jsonObservableStats{}}
			for _, o := range c.Observables {
				jc.Observables = append(jc.Observables, jsonObservableStats{
					Name:       o.Name,
					DurationMs: o.OnDuration.Milliseconds(),
					Count:      o.OnCount,
					Share:      o.Share,
				})
			}
			js.Categories = append(js.Categories, jc)
		}
		out.Statistics = js
	}
	return out
}

func toJSONAction(r Report, a correction.Action) jsonAction {
	ja := jsonAction{Kind: a.Kind.String(), Description: a.Description, Reason: a.Reason}
	for _, id := range a.IDs {
		ja.IDs = append(ja.IDs, id.String())
	}
	if !a.TargetID.IsZero() {
		ja.TargetID = a.TargetID.String()
	}
	if a.HasNewDateTime() {
		ja.NewDateTime = jsonTime(a.NewDateTime)
	}
	if a.NewReading != nil {
		nr := toJSONReading(r, *a.NewReading)
		ja.NewReading = &nr
	}
	return ja
}

func toJSONReading(r Report, reading model.Reading) jsonReading {
	return jsonReading{
		ID:          reading.ID.String(),
		Type:        reading.Type.String(),
		Name:        reading.Name,
		Description: reading.Description,
		DateTime:    jsonTime(reading.DateTime),
		Display:     r.timeLabel(reading.DateTime),
	}
}

func jsonTime(t time.Time) string {
	return t.UTC().Format(jsonTimeLayout)
}
