package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/core/grouping"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/core/statistics"
	"github.com/penwyp/go-actograph/internal/core/timeline"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(t *testing.T) Report {
	t.Helper()
	util.SetColorEnabled(false)
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	protocol := model.Protocol{Name: "dog", Categories: []model.Category{
		{Name: "posture", Observables: []model.Observable{{Name: "sitting"}, {Name: "standing"}}},
	}}
	readings := []model.Reading{
		{ID: model.PersistedID(1), Type: model.ReadingStart, DateTime: model.At(0)},
		{ID: model.PersistedID(2), Type: model.ReadingData, Name: "sitting", DateTime: model.At(0)},
		{ID: model.PersistedID(3), Type: model.ReadingData, Name: "standing", DateTime: model.At(4000)},
		{ID: model.PersistedID(4), Type: model.ReadingStop, DateTime: model.At(5000)},
	}

	analysis := correction.Analyze(readings[:3], false)
	report := statistics.Observation(readings, protocol)

	return Report{
		Title:       "dog.json",
		Source:      "dog.json",
		Mode:        model.ModeCalendar,
		Corrections: &analysis,
		Readings:    readings,
		Timelines:   timeline.BuildAll(grouping.Group(readings, protocol)),
		Statistics:  &report,
		Dropped:     []string{"flying"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "table"},
		{name: ""},
		{name: "json"},
		{name: "csv"},
		{name: "summary"},
		{name: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, testReport(t)))
	out := buf.String()

	assert.Contains(t, out, "1 correction")
	assert.Contains(t, out, "add_missing_pause")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "Timeline: posture")
	assert.Contains(t, out, "1970-01-01 00:00:04.000")
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "flying")
}

func TestTableFormatter_NoCorrections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, Report{Corrections: &correction.Result{}}))
	assert.Contains(t, buf.String(), "No corrections needed")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testReport(t)))

	var decoded struct {
		NeedsCorrection bool `json:"needsCorrection"`
		Actions         []struct {
			Kind       string `json:"kind"`
			NewReading struct {
				Type     string `json:"type"`
				DateTime string `json:"dateTime"`
			} `json:"newReading"`
		} `json:"actions"`
		Readings  []map[string]interface{} `json:"readings"`
		Timelines []struct {
			Category string `json:"category"`
			Segments []struct {
				Observable string `json:"observable"`
				DurationMs int64  `json:"durationMs"`
			} `json:"segments"`
		} `json:"timelines"`
		Statistics struct {
			TotalDurationMs int64 `json:"totalDurationMs"`
		} `json:"statistics"`
		Dropped []string `json:"dropped"`
	}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))

	assert.True(t, decoded.NeedsCorrection)
	require.Len(t, decoded.Actions, 1)
	assert.Equal(t, "add_missing_pause", decoded.Actions[0].Kind)
	assert.Equal(t, "stop", decoded.Actions[0].NewReading.Type)
	assert.Equal(t, "1970-01-01T00:00:04.001Z", decoded.Actions[0].NewReading.DateTime)
	assert.Len(t, decoded.Readings, 4)
	assert.Equal(t, "#2", decoded.Readings[1]["id"])

	require.Len(t, decoded.Timelines, 1)
	require.Len(t, decoded.Timelines[0].Segments, 2)
	assert.Equal(t, int64(4000), decoded.Timelines[0].Segments[0].DurationMs)
	assert.Equal(t, "standing", decoded.Timelines[0].Segments[1].Observable)
	assert.Equal(t, int64(5000), decoded.Statistics.TotalDurationMs)
	assert.Equal(t, []string{"flying"}, decoded.Dropped)
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, testReport(t)))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	sections := map[string][][]string{}
	for _, rec := range records {
		sections[rec[0]] = append(sections[rec[0]], rec)
	}

	assert.Len(t, sections["section"], 4, "one header per block")
	require.Len(t, sections["action"], 1)
	assert.Equal(t, "add_missing_pause", sections["action"][0][1])
	assert.Len(t, sections["reading"], 4)
	require.Len(t, sections["segment"], 2)
	assert.Equal(t, []string{"segment", "posture", "sitting", "1970-01-01 00:00:00.000", "1970-01-01 00:00:04.000", "4000"}, sections["segment"][0])
	require.Len(t, sections["statistic"], 2)
	assert.Equal(t, "80.00", sections["statistic"][0][5])
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter().Format(&buf, testReport(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 60)))
	assert.Contains(t, out, "add_missing_pause:")
	assert.Contains(t, out, "Readings: 4")
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "Not in protocol: flying")
	assert.Regexp(t, `posture\s+\d+ points \(1970-01-01 00:00:00\.000 → 1970-01-01 00:00:0\d\.000\)`, out)
}

func TestSummaryFormatter_EmptyTimelineHasNoSpan(t *testing.T) {
	var buf bytes.Buffer
	report := Report{Timelines: []timeline.CategoryTimeline{{Category: "voice"}}}
	require.NoError(t, NewSummaryFormatter().Format(&buf, report))

	assert.Contains(t, buf.String(), "0 points\n")
}

func TestFormatters_ConditionalStatistics(t *testing.T) {
	report := testReport(t)
	conditional, err := statistics.Conditional(report.Readings, model.Protocol{Categories: []model.Category{
		{Name: "posture", Observables: []model.Observable{{Name: "sitting"}, {Name: "standing"}}},
	}}, []statistics.ConditionGroup{{Observables: []string{"sitting"}}}, statistics.And)
	require.NoError(t, err)
	report.Statistics = &conditional

	var table bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&table, report))
	assert.Contains(t, table.String(), "When sitting: 1 period")

	var summary bytes.Buffer
	require.NoError(t, NewSummaryFormatter().Format(&summary, report))
	assert.Contains(t, summary.String(), "sitting (1 period)")

	var csvOut bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&csvOut, report))
	assert.Contains(t, csvOut.String(), "selection,sitting,")

	var js bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&js, report))
	var decoded struct {
		Statistics struct {
			Condition string `json:"condition"`
			Selection []struct {
				DurationMs int64 `json:"durationMs"`
			} `json:"selection"`
		} `json:"statistics"`
	}
	require.NoError(t, sonic.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "sitting", decoded.Statistics.Condition)
	require.Len(t, decoded.Statistics.Selection, 1)
	assert.Equal(t, int64(4000), decoded.Statistics.Selection[0].DurationMs)
}

func TestChronometerMode(t *testing.T) {
	report := testReport(t)
	report.Mode = model.ModeChronometer
	report.T0 = model.At(0)

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, report))

	assert.Contains(t, buf.String(), "segment,posture,sitting,0ms,4s,4000")
}
