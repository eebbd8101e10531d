package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

func prettyPrintStore() model.Derivations {
	return model.Derivations{
		"/nix/store/aa-app.drv": testDerivation("/out/of/app",
			map[string]string{"name": "app-1.0", "version": "1.0"},
			map[string][]string{
				"/nix/store/ll-lib.drv":  {"out"},
				"/nix/store/zz-zlib.drv": {"out"},
			}),
		"/nix/store/ll-lib.drv": testDerivation("/out/of/lib",
			map[string]string{"name": "somelib-2.0", "version": "2.0"}, nil),
		"/nix/store/zz-zlib.drv": testDerivation("/out/of/zlib",
			map[string]string{"name": "zlib-1.3", "version": "1.3"}, nil),
	}
}

func TestPrettyPrintFiltersStdenv(t *testing.T) {
	g, err := Build(prettyPrintStore(), nil, nil)
	require.NoError(t, err)

	out := g.PrettyPrint(DisplayOptions{})
	assert.Contains(t, out, "pkg:generic/app@1.0")
	assert.Contains(t, out, "pkg:generic/somelib@2.0")
	assert.NotContains(t, out, "zlib")

	out = g.PrettyPrint(DisplayOptions{IncludeStdenv: true})
	assert.Contains(t, out, "pkg:generic/zlib@1.3")
}

func TestPrettyPrintMaxDepth(t *testing.T) {
	g, err := Build(prettyPrintStore(), nil, nil)
	require.NoError(t, err)

	out := g.PrettyPrint(DisplayOptions{MaxDepth: 1})
	assert.Contains(t, out, "pkg:generic/app@1.0")
	assert.NotContains(t, out, "somelib")
}

func TestPrettyPrintIndentation(t *testing.T) {
	g, err := Build(prettyPrintStore(), nil, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(g.PrettyPrint(DisplayOptions{}), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.False(t, strings.HasPrefix(lines[0], " "), "root line must not be indented")
	assert.True(t, strings.HasPrefix(lines[1], "  "), "child line must be indented")
}

func TestPrettyPrintOutPathsOnly(t *testing.T) {
	g, err := Build(prettyPrintStore(), nil, nil)
	require.NoError(t, err)

	out := g.PrettyPrint(DisplayOptions{OutPathsOnly: true, IncludeStdenv: true})
	assert.Contains(t, out, "/out/of/app")
	assert.Contains(t, out, "/out/of/lib")
	assert.Contains(t, out, "/out/of/zlib")
	assert.NotContains(t, out, "pkg:")
}

func TestIsStdenvName(t *testing.T) {
	for name, want := range map[string]bool{
		"autoconf":      true,
		"libtool-2.4.7": true,
		"zlib":          true,
		"gcc-wrapper":   true,
		"somelib":       false,
		"":              false,
	} {
		if got := isStdenvName(name); got != want {
			t.Errorf("isStdenvName(%q) = %v, want %v", name, got, want)
		}
	}
}
