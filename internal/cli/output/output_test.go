package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":       FormatTable,
		"TABLE":  FormatTable,
		" json ": FormatJSON,
		"yml":    FormatYAML,
		"yaml":   FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Type", "Size", "Name")
	table.AddRow("f", "5", "a.txt")
	table.AddRow("d", "0", "sub")

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatTable, table))

	out := buf.String()
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "sub")
}

func TestPrintStructured(t *testing.T) {
	data := []listing{{Name: "a.txt", Size: 5}}

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, data))
	assert.JSONEq(t, `[{"name":"a.txt","size":5}]`, buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, FormatYAML, data))
	assert.Equal(t, "- name: a.txt\n  size: 5\n", buf.String())

	// Non-table data in table mode falls back to JSON.
	buf.Reset()
	require.NoError(t, Print(&buf, FormatTable, data))
	assert.JSONEq(t, `[{"name":"a.txt","size":5}]`, buf.String())
}
