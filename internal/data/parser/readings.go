package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
)

var (
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrUnknownReadingType = model.ErrUnknownReadingType
	ErrUnsupportedFormat  = errors.New("unsupported file format")
)

// wireTimeLayout keeps millisecond precision, which is all readings carry
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// readingRecord is the on-disk shape of a reading. DateTime is either an
// RFC 3339 string or an integer number of Unix milliseconds.
type readingRecord struct {
	ID          *int64      `json:"id,omitempty"`
	TempID      string      `json:"tempId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type"`
	DateTime    interface{} `json:"dateTime"`
}

func (rec readingRecord) toReading() (model.Reading, error) {
	typ, err := model.ParseReadingType(rec.Type)
	if err != nil {
		return model.Reading{}, err
	}

	at, err := parseTimestamp(rec.DateTime)
	if err != nil {
		return model.Reading{}, err
	}

	id := model.TemporaryID(rec.TempID)
	if rec.ID != nil {
		id = model.PersistedID(*rec.ID)
	}

	return model.Reading{
		ID:          id,
		Name:        rec.Name,
		Description: rec.Description,
		Type:        typ,
		DateTime:    at,
	}, nil
}

func parseTimestamp(v interface{}) (time.Time, error) {
	switch ts := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
		}
		return model.At(parsed.UnixMilli()), nil
	case float64:
		if ts != math.Trunc(ts) || math.IsInf(ts, 0) {
			return time.Time{}, fmt.Errorf("%w: %v is not whole milliseconds", ErrInvalidTimestamp, ts)
		}
		return model.At(int64(ts)), nil
	case int64:
		return model.At(ts), nil
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing dateTime", ErrInvalidTimestamp)
	default:
		return time.Time{}, fmt.Errorf("%w: unexpected %T", ErrInvalidTimestamp, v)
	}
}

func toRecord(r model.Reading) readingRecord {
	rec := readingRecord{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type.String(),
		DateTime:    r.DateTime.UTC().Format(wireTimeLayout),
	}
	if n, ok := r.ID.Persisted(); ok {
		rec.ID = &n
	}
	if s, ok := r.ID.Temporary(); ok {
		rec.TempID = s
	}
	return rec
}

// isJSONL reports whether path holds one reading per line. A .json file
// whose first non-blank byte is not '[' is also read line by line.
func isJSONL(path string, data []byte) (bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return true, nil
	case ".json":
		trimmed := bytes.TrimLeft(data, " \t\r\n")
		return len(trimmed) > 0 && trimmed[0] != '[', nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// parseReadings decodes readings file content; the extension of path
// selects the format. In a JSON array any invalid reading fails the whole
// file; in JSONL invalid lines are skipped.
func parseReadings(path string, data []byte) ([]model.Reading, error) {
	lines, err := isJSONL(path, data)
	if err != nil {
		return nil, err
	}
	if lines {
		return parseReadingLines(path, data)
	}
	return parseReadingArray(path, data)
}

func parseReadingArray(path string, data []byte) ([]model.Reading, error) {
	var records []readingRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	readings := make([]model.Reading, 0, len(records))
	for i, rec := range records {
		r, err := rec.toReading()
		if err != nil {
			return nil, fmt.Errorf("%s: reading %d: %w", path, i, err)
		}
		readings = append(readings, r)
	}

	util.LogDebugf("Parsed %d readings from %s", len(readings), path)
	return readings, nil
}

func parseReadingLines(path string, data []byte) ([]model.Reading, error) {
	readings := make([]model.Reading, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	skipped := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec readingRecord
		if err := sonic.Unmarshal(line, &rec); err != nil {
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", path, lineCount, err)
			skipped++
			continue
		}
		r, err := rec.toReading()
		if err != nil {
			util.LogDebugf("Skip invalid reading %s:%d - %v", path, lineCount, err)
			skipped++
			continue
		}
		readings = append(readings, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	if skipped > 0 {
		util.LogWarnf("Skipped %d invalid line(s) in %s", skipped, path)
	}
	util.LogDebugf("Parsed %d readings from %s", len(readings), path)
	return readings, nil
}

// WriteReadingsFile writes readings as an indented JSON array, or one reading
// per line when path ends in .jsonl
func WriteReadingsFile(path string, readings []model.Reading) error {
	records := make([]readingRecord, len(readings))
	for i, r := range readings {
		records[i] = toRecord(r)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		for _, rec := range records {
			line, err := sonic.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode reading: %w", err)
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
	case ".json":
		data, err := sonic.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode readings: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write readings file: %w", err)
	}
	return nil
}
