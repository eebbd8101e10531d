package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromString(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"cyclonedx", FormatCycloneDX},
		{"cdx", FormatCycloneDX},
		{"spdx", FormatSPDX},
		{"native", FormatNative},
		{"pretty", FormatPretty},
		{"stats", FormatStats},
	}
	for _, tt := range tests {
		got, err := FormatFromString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatFromStringUnknown(t *testing.T) {
	_, err := FormatFromString("swid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestSerializationFromString(t *testing.T) {
	for in, want := range map[string]Serialization{
		"json": SerializationJSON,
		"yaml": SerializationYAML,
		"yml":  SerializationYAML,
	} {
		got, err := SerializationFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSerializationXMLIsRejected(t *testing.T) {
	_, err := SerializationFromString("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml serialization is not supported")
}

func TestMarshalCompactJSON(t *testing.T) {
	opts := jsonOptions()
	opts.Compact = true
	data, err := marshal(map[string]string{"a": "b"}, opts)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, string(data))
}

func TestWriteToFile(t *testing.T) {
	g := buildTestGraph(t)
	path := filepath.Join(t.TempDir(), "sbom.json")

	require.NoError(t, Write(g, FormatCycloneDX, jsonOptions(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	var bom cdxBOM
	require.NoError(t, json.Unmarshal(data, &bom))
	assert.Equal(t, "CycloneDX", bom.BOMFormat)
}

func TestRuntimeReachableFollowsChildrenOnly(t *testing.T) {
	g := buildTestGraph(t)

	opts := jsonOptions()
	opts.RuntimeOnly = true
	reachable := runtimeReachable(g, opts)

	assert.True(t, reachable[appDrv])
	assert.True(t, reachable[libDrv])
	assert.False(t, reachable[srcDrv])
	assert.False(t, reachable[patchDrv])
}

func TestRuntimeReachableOffIsNil(t *testing.T) {
	g := buildTestGraph(t)
	assert.Nil(t, runtimeReachable(g, jsonOptions()))
}
