package parser

import (
	"errors"
	"testing"

	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlProtocol = `id: 3
name: Dog ethogram
items:
  - type: category
    id: c1
    name: posture
    children:
      - type: observable
        id: o1
        name: sitting
      - type: observable
        id: o2
        name: standing
      - type: category
        id: c2
        name: tail
        action: discrete
        children:
          - type: observable
            id: o3
            name: wagging
  - type: observable
    id: o4
    name: orphan
  - type: category
    id: c3
    name: vocal
    action: discrete
    children:
      - type: observable
        id: o5
        name: bark
`

func TestParseProtocolFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "protocol.yaml", yamlProtocol)

	protocol, err := ParseProtocolFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(3), protocol.ID)
	assert.Equal(t, "Dog ethogram", protocol.Name)
	require.Len(t, protocol.Categories, 3)

	assert.Equal(t, "posture", protocol.Categories[0].Name)
	assert.Equal(t, []string{"sitting", "standing"}, protocol.Categories[0].ObservableNames())
	assert.True(t, protocol.Categories[0].IsContinuous())

	assert.Equal(t, "tail", protocol.Categories[1].Name)
	assert.False(t, protocol.Categories[1].IsContinuous())
	assert.Equal(t, "vocal", protocol.Categories[2].Name)

	_, ok := protocol.CategoryOf("orphan")
	assert.False(t, ok, "top-level observables are ignored")
}

func TestParseProtocolFile_JSONBareList(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ethogram.json", `[
		{"type":"category","id":"c1","name":"posture","children":[
			{"type":"observable","id":"o1","name":"sitting"}
		]}
	]`)

	protocol, err := ParseProtocolFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ethogram", protocol.Name)
	require.Len(t, protocol.Categories, 1)
	assert.Equal(t, []model.Observable{{ID: "o1", Name: "sitting"}}, protocol.Categories[0].Observables)
}

func TestParseProtocolFile_YAMLDocumentMarker(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.yml", "---\n"+yamlProtocol)

	protocol, err := ParseProtocolFile(path)
	require.NoError(t, err)
	assert.Len(t, protocol.Categories, 3)
}

func TestParseProtocolFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing name",
			content: `[{"type":"category","id":"c1"}]`,
		},
		{
			name:    "unknown item type",
			content: `[{"type":"group","id":"c1","name":"x"}]`,
		},
		{
			name:    "unknown action",
			content: `[{"type":"category","id":"c1","name":"x","action":"sometimes"}]`,
		},
		{
			name:    "invalid child",
			content: `[{"type":"category","id":"c1","name":"x","children":[{"type":"observable","name":"a"}]}]`,
		},
		{
			name:    "duplicate ids",
			content: `[{"type":"category","id":"c1","name":"x","children":[{"type":"observable","id":"c1","name":"a"}]}]`,
		},
		{
			name: "duplicate observable names",
			content: `[{"type":"category","id":"c1","name":"x","children":[
				{"type":"observable","id":"o1","name":"a"},
				{"type":"observable","id":"o2","name":"a"}]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "p.json", tt.content)
			_, err := ParseProtocolFile(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProtocol), "got %v", err)
		})
	}
}

func TestParseProtocolFile_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.toml", "x = 1")
	_, err := ParseProtocolFile(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
