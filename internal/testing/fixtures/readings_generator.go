package fixtures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
)

// ReadingEntry is a reading in its on-disk shape. DateTime is left untyped
// so tests can write RFC 3339 strings, Unix milliseconds or garbage.
type ReadingEntry struct {
	ID          *int64      `json:"id,omitempty"`
	TempID      string      `json:"tempId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type"`
	DateTime    interface{} `json:"dateTime"`
}

// DogProtocolYAML is a small two-category protocol matching the generated
// observations
const DogProtocolYAML = `name: Dog ethogram
items:
  - type: category
    id: c-posture
    name: posture
    children:
      - type: observable
        id: o-sitting
        name: sitting
      - type: observable
        id: o-standing
        name: standing
      - type: observable
        id: o-lying
        name: lying
  - type: category
    id: c-vocal
    name: vocal
    action: discrete
    children:
      - type: observable
        id: o-bark
        name: bark
`

// TestDataGenerator writes observation files under a base directory
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
	}
}

func id(n int64) *int64 {
	return &n
}

func at(start time.Time, offset time.Duration) string {
	return start.Add(offset).UTC().Format(time.RFC3339Nano)
}

// GenerateCleanObservation writes a well-formed observation: one start, one
// paired pause, one stop, sorted data readings. Posture is sitting for 40s
// and standing for 40s of effective time.
func (g *TestDataGenerator) GenerateCleanObservation(filename string, start time.Time) (string, error) {
	entries := []ReadingEntry{
		{ID: id(1), Type: "start", DateTime: at(start, 0)},
		{ID: id(2), Type: "data", Name: "sitting", DateTime: at(start, 0)},
		{ID: id(3), Type: "data", Name: "bark", DateTime: at(start, 10*time.Second)},
		{ID: id(4), Type: "data", Name: "standing", DateTime: at(start, 40*time.Second)},
		{ID: id(5), Type: "pause_start", DateTime: at(start, 50*time.Second)},
		{ID: id(6), Type: "pause_end", DateTime: at(start, 70*time.Second)},
		{ID: id(7), Type: "data", Name: "# dog distracted", DateTime: at(start, 75*time.Second)},
		{ID: id(8), Type: "stop", DateTime: at(start, 100*time.Second)},
	}
	return g.WriteJSON(filename, entries)
}

// GenerateMissingStop writes an observation that was never stopped
func (g *TestDataGenerator) GenerateMissingStop(filename string, start time.Time) (string, error) {
	entries := []ReadingEntry{
		{ID: id(1), Type: "start", DateTime: at(start, 0)},
		{ID: id(2), Type: "data", Name: "sitting", DateTime: at(start, time.Second)},
		{ID: id(3), Type: "data", Name: "standing", DateTime: at(start, 11*time.Second)},
	}
	return g.WriteJSON(filename, entries)
}

// GenerateScrambled writes an observation needing every kind of correction:
// unsorted readings, a duplicate start, a stop before the last reading and
// an unpaired pause end
func (g *TestDataGenerator) GenerateScrambled(filename string, start time.Time) (string, error) {
	entries := []ReadingEntry{
		{ID: id(1), Type: "start", DateTime: at(start, 0)},
		{ID: id(2), Type: "data", Name: "standing", DateTime: at(start, 20*time.Second)},
		{ID: id(3), Type: "data", Name: "sitting", DateTime: at(start, 5*time.Second)},
		{ID: id(4), Type: "start", DateTime: at(start, 6*time.Second)},
		{ID: id(5), Type: "pause_end", DateTime: at(start, 12*time.Second)},
		{ID: id(6), Type: "stop", DateTime: at(start, 15*time.Second)},
		{ID: id(7), Type: "data", Name: "flying", DateTime: at(start, 16*time.Second)},
	}
	return g.WriteJSON(filename, entries)
}

// GenerateLargeObservation writes a JSONL observation alternating posture
// every second, with timestamps as Unix milliseconds
func (g *TestDataGenerator) GenerateLargeObservation(filename string, start time.Time, numEntries int) (string, error) {
	postures := []string{"sitting", "standing", "lying"}
	entries := make([]ReadingEntry, 0, numEntries+2)
	entries = append(entries, ReadingEntry{ID: id(1), Type: "start", DateTime: start.UnixMilli()})
	for i := 0; i < numEntries; i++ {
		entries = append(entries, ReadingEntry{
			ID:       id(int64(i + 2)),
			Type:     "data",
			Name:     postures[i%len(postures)],
			DateTime: start.Add(time.Duration(i) * time.Second).UnixMilli(),
		})
	}
	entries = append(entries, ReadingEntry{
		ID:       id(int64(numEntries + 2)),
		Type:     "stop",
		DateTime: start.Add(time.Duration(numEntries) * time.Second).UnixMilli(),
	})
	return g.WriteJSONL(filename, entries)
}

// GenerateProtocol writes DogProtocolYAML
func (g *TestDataGenerator) GenerateProtocol(filename string) (string, error) {
	path := filepath.Join(g.baseDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(DogProtocolYAML), 0644)
}

// WriteJSON writes entries as a JSON array
func (g *TestDataGenerator) WriteJSON(filename string, entries []ReadingEntry) (string, error) {
	data, err := sonic.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal entries: %w", err)
	}
	return g.write(filename, data)
}

// WriteJSONL writes one entry per line
func (g *TestDataGenerator) WriteJSONL(filename string, entries []ReadingEntry) (string, error) {
	var buf bytes.Buffer
	for _, entry := range entries {
		line, err := sonic.Marshal(entry)
		if err != nil {
			return "", fmt.Errorf("failed to marshal entry: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return g.write(filename, buf.Bytes())
}

func (g *TestDataGenerator) write(filename string, data []byte) (string, error) {
	path := filepath.Join(g.baseDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// GetBaseDir returns the base directory
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}
