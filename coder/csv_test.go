package coder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	rows := []Fields{
		{{"title", "A"}, {"url", "u1"}, {"quote", `he said "hi"`}},
		{{"title", "B"}, {"url", "u2"}, {"extra", "x,y"}},
	}

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, rows))

	want := `"title","url","quote","extra"` + "\n" +
		`"A","u1","he said ""hi""",""` + "\n" +
		`"B","u2","","x,y"` + "\n"
	assert.Equal(t, want, sb.String())
}

func TestWriteCSV_NoRows(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, nil))
	assert.Empty(t, sb.String())
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSVFile(dir, []Fields{{{"title", "A"}}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "result.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\"title\"\n\"A\"\n", string(data))
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields(`{"b":"1","a":{"x": [1, 2]},"b":"2","c":true}`)
	require.NoError(t, err)
	assert.Equal(t, Fields{{"b", "2"}, {"a", `{"x":[1,2]}`}, {"c", "true"}}, fields)

	_, err = ParseFields(`"just a string"`)
	assert.Error(t, err)

	_, err = ParseFields(`{"a":`)
	assert.Error(t, err)
}
