package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeReading struct {
	kind, id, name, description string
	at                          time.Time
}

func (f fakeReading) FingerprintFields() (string, string, string, string, time.Time) {
	return f.kind, f.id, f.name, f.description, f.at
}

func TestReadingsFingerprint(t *testing.T) {
	base := time.UnixMilli(1000).UTC()
	a := []fakeReading{
		{kind: "start", id: "#1", at: base},
		{kind: "data", id: "#2", name: "sitting", at: base.Add(time.Second)},
	}

	t.Run("stable for equal content", func(t *testing.T) {
		b := append([]fakeReading(nil), a...)
		assert.Equal(t, ReadingsFingerprint(a), ReadingsFingerprint(b))
		assert.Len(t, ReadingsFingerprint(a), 8)
	})

	t.Run("order matters", func(t *testing.T) {
		swapped := []fakeReading{a[1], a[0]}
		assert.NotEqual(t, ReadingsFingerprint(a), ReadingsFingerprint(swapped))
	})

	t.Run("field boundaries are unambiguous", func(t *testing.T) {
		x := []fakeReading{{kind: "data", id: "ab", name: "c", at: base}}
		y := []fakeReading{{kind: "data", id: "a", name: "bc", at: base}}
		assert.NotEqual(t, ReadingsFingerprint(x), ReadingsFingerprint(y))
	})

	t.Run("timestamp changes fingerprint", func(t *testing.T) {
		moved := append([]fakeReading(nil), a...)
		moved[1].at = moved[1].at.Add(time.Millisecond)
		assert.NotEqual(t, ReadingsFingerprint(a), ReadingsFingerprint(moved))
	})

	t.Run("description changes fingerprint", func(t *testing.T) {
		annotated := append([]fakeReading(nil), a...)
		annotated[1].description = "calm"
		assert.NotEqual(t, ReadingsFingerprint(a), ReadingsFingerprint(annotated))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, ReadingsFingerprint([]fakeReading{}), ReadingsFingerprint[fakeReading](nil))
	})
}

func TestBytesFingerprint(t *testing.T) {
	first := BytesFingerprint([]byte(`[]`))
	second := BytesFingerprint([]byte(`[{}]`))

	assert.Len(t, first, 8)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, BytesFingerprint([]byte(`[{}]`)))
}
