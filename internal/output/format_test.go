package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	require.Equal(t, "json", f.Extension())

	f, err = ParseFormat("yaml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)
	require.Equal(t, "yml", f.Extension())

	_, err = ParseFormat("toml")
	require.EqualError(t, err, `unsupported output format "toml"`)
}

func TestFormat_Render(t *testing.T) {
	v := map[string][]string{"b": {"x"}, "a": {}}

	compact, err := FormatJSON.Render(v, false)
	require.NoError(t, err)
	require.Equal(t, "{\"a\":[],\"b\":[\"x\"]}\n", string(compact))

	pretty, err := FormatJSON.Render(v, true)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": [],\n  \"b\": [\n    \"x\"\n  ]\n}\n", string(pretty))

	y, err := FormatYAML.Render(v, true)
	require.NoError(t, err)
	require.Contains(t, string(y), "a: []\n")
	require.Less(t, strings.Index(string(y), "a:"), strings.Index(string(y), "b:"))
}

func TestFormat_RenderDoesNotEscapeHTML(t *testing.T) {
	v := []string{"http://h/probe?a=1&b=<2>"}

	compact, err := FormatJSON.Render(v, false)
	require.NoError(t, err)
	require.Equal(t, "[\"http://h/probe?a=1&b=<2>\"]\n", string(compact))

	pretty, err := FormatJSON.Render(v, true)
	require.NoError(t, err)
	require.Equal(t, "[\n  \"http://h/probe?a=1&b=<2>\"\n]\n", string(pretty))
}
