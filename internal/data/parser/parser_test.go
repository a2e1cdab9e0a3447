package parser

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func parseFile(path string) ([]model.Reading, error) {
	return NewParser(1).ParseFile(path)
}

func TestParseFile_JSONArray(t *testing.T) {
	path := writeFile(t, t.TempDir(), "readings.json", `[
		{"id": 1, "type": "start", "name": "", "dateTime": "2024-03-05T10:00:00Z"},
		{"id": 2, "tempId": "ignored", "type": "data", "name": "sitting", "dateTime": 1709632801500},
		{"tempId": "temp-9", "type": "stop", "name": "End", "description": "done", "dateTime": "2024-03-05T11:00:00.250+01:00"}
	]`)

	readings, err := parseFile(path)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, model.ReadingStart, readings[0].Type)
	assert.Equal(t, int64(1709632800000), readings[0].Millis())

	id, ok := readings[1].ID.Persisted()
	assert.True(t, ok, "persisted id wins over tempId")
	assert.Equal(t, int64(2), id)
	assert.Equal(t, "sitting", readings[1].Name)
	assert.Equal(t, int64(1709632801500), readings[1].Millis())

	tmp, ok := readings[2].ID.Temporary()
	assert.True(t, ok)
	assert.Equal(t, "temp-9", tmp)
	assert.Equal(t, "done", readings[2].Description)
	assert.Equal(t, int64(1709632800250), readings[2].Millis())
}

func TestParseFile_ArrayRejectsInvalidReading(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed timestamp",
			content: `[{"type":"data","name":"a","dateTime":"yesterday"}]`,
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "fractional milliseconds",
			content: `[{"type":"data","name":"a","dateTime":1.5}]`,
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "missing timestamp",
			content: `[{"type":"data","name":"a"}]`,
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "unknown type",
			content: `[{"type":"resume","name":"a","dateTime":0}]`,
			wantErr: ErrUnknownReadingType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.json", tt.content)
			_, err := parseFile(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseFile_JSONLSkipsInvalidLines(t *testing.T) {
	path := writeFile(t, t.TempDir(), "readings.jsonl", `{"id":1,"type":"start","name":"","dateTime":0}
not json at all

{"id":2,"type":"data","name":"sitting","dateTime":"not a date"}
{"id":3,"type":"data","name":"standing","dateTime":1000}
{"id":4,"type":"bogus","name":"x","dateTime":2000}
{"id":5,"type":"stop","name":"","dateTime":3000}`)

	readings, err := parseFile(path)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, "standing", readings[1].Name)
	assert.Equal(t, model.ReadingStop, readings[2].Type)
}

func TestParseFile_JSONWithLines(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lines.json", `{"type":"data","name":"a","dateTime":5}
{"type":"data","name":"b","dateTime":6}`)

	readings, err := parseFile(path)
	require.NoError(t, err)
	assert.Len(t, readings, 2)
	assert.True(t, readings[0].ID.IsZero())
}

func TestParseFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := parseFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	path := writeFile(t, dir, "readings.csv", "a,b")
	_, err = parseFile(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestWriteReadingsFile(t *testing.T) {
	readings := []model.Reading{
		{ID: model.PersistedID(1), Type: model.ReadingStart, DateTime: model.At(0)},
		{ID: model.TemporaryID("temp-1"), Type: model.ReadingData, Name: "sitting", Description: "calm", DateTime: model.At(1500)},
		{Type: model.ReadingStop, Name: model.NameStop, DateTime: model.At(3000)},
	}

	for _, name := range []string{"out.json", "out.jsonl"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteReadingsFile(path, readings))

			back, err := parseFile(path)
			require.NoError(t, err)
			require.Len(t, back, 3)
			for i := range readings {
				assert.Equal(t, readings[i].Type, back[i].Type)
				assert.Equal(t, readings[i].Name, back[i].Name)
				assert.Equal(t, readings[i].Description, back[i].Description)
				assert.True(t, readings[i].DateTime.Equal(back[i].DateTime))
				assert.Equal(t, readings[i].ID.String(), back[i].ID.String())
			}
		})
	}

	err := WriteReadingsFile(filepath.Join(t.TempDir(), "out.txt"), readings)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParser_ParseFileCachesByContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.json", `[{"type":"data","name":"a","dateTime":1}]`)
	p := NewParser(2)

	first, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].Name = "mutated"

	second, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0].Name, "cached readings are returned as copies")

	writeFile(t, dir, "r.json", `[{"type":"data","name":"a","dateTime":1},{"type":"data","name":"b","dateTime":2}]`)
	third, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, third, 2)
}

func TestParser_ParseFileFingerprintsParsedBytes(t *testing.T) {
	dir := t.TempDir()
	content := `[{"type":"data","name":"a","dateTime":1}]`
	path := writeFile(t, dir, "r.json", content)
	p := NewParser(1)

	_, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Contains(t, p.cache, path)
	assert.Equal(t, util.BytesFingerprint([]byte(content)), p.cache[path].fingerprint)

	writeFile(t, dir, "r.json", `[{"type":"data","name":"a","dateTime":"x"}]`)
	_, err = p.ParseFile(path)
	require.Error(t, err)
	assert.NotContains(t, p.cache, path, "a failed parse evicts the stale entry")

	writeFile(t, dir, "r.json", content)
	readings, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestParser_ParseFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `[{"type":"data","name":"a","dateTime":1}]`)
	bad := writeFile(t, dir, "bad.json", `[{"type":"data","name":"a","dateTime":"x"}]`)
	missing := filepath.Join(dir, "missing.json")

	var results []ParseResult
	for r := range NewParser(2).ParseFiles([]string{good, bad, missing}) {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	require.Len(t, results, 3)
	assert.Equal(t, bad, results[0].File)
	assert.Error(t, results[0].Error)
	assert.Equal(t, good, results[1].File)
	assert.NoError(t, results[1].Error)
	assert.Len(t, results[1].Readings, 1)
	assert.Equal(t, missing, results[2].File)
	assert.Error(t, results[2].Error)
}
