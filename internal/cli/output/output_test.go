package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsRow struct {
	Projects int64 `json:"projects" yaml:"projects"`
	Badges   int64 `json:"badges" yaml:"badges"`
}

func (s statsRow) Headers() []string { return []string{"Projects", "Badges"} }

func (s statsRow) Rows() [][]string { return [][]string{{"3", "7"}} }

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: "yml", want: FormatYAML},
		{input: "  yaml ", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestPrinterFormats(t *testing.T) {
	row := statsRow{Projects: 3, Badges: 7}

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(row))
		assert.Contains(t, buf.String(), "PROJECTS")
		assert.Contains(t, buf.String(), "7")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON).Print(row))
		assert.JSONEq(t, `{"projects":3,"badges":7}`, buf.String())
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML).Print(row))
		assert.Equal(t, "projects: 3\nbadges: 7\n", buf.String())
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(map[string]int{"n": 1}))
		assert.JSONEq(t, `{"n":1}`, buf.String())
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		assert.Error(t, NewPrinter(&bytes.Buffer{}, Format("xml")).Print(row))
	})
}

func TestPrinterStatusWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable)

	p.Success("published")
	p.Warning("careful")

	assert.Equal(t, "published\ncareful\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestKeyValues(t *testing.T) {
	var kv KeyValues
	kv.Add("Slug", "snake")
	kv.Add("Revision", "2")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, kv))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "snake")
	assert.Contains(t, lines[2], "Revision")
}
