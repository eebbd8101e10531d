package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpSPDXDocument(t *testing.T) {
	g := buildTestGraph(t)

	data, err := DumpSPDX(g, jsonOptions())
	require.NoError(t, err)

	var doc spdxDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "SPDXRef-DOCUMENT", doc.SPDXID)
	assert.Equal(t, "SPDX-2.3", doc.SpdxVersion)
	assert.Equal(t, "CC0-1.0", doc.DataLicense)
	assert.Equal(t, appDrv, doc.Name)
	assert.True(t, strings.HasPrefix(doc.DocumentNamespace, "https://spdx.org/spdxdocs/aaa-app-1.0.drv-"))
	require.NotEmpty(t, doc.CreationInfo.Creators)
	assert.Equal(t, "Tool: nix-sbom-builder", doc.CreationInfo.Creators[0])
}

func TestDumpSPDXPackages(t *testing.T) {
	g := buildTestGraph(t)

	data, err := DumpSPDX(g, jsonOptions())
	require.NoError(t, err)

	var doc spdxDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	byID := map[string]spdxPackage{}
	for _, pkg := range doc.Packages {
		byID[pkg.SPDXID] = pkg
	}
	assert.NotContains(t, byID, spdxID(scriptDrv))

	app, ok := byID[spdxID(appDrv)]
	require.True(t, ok, "application package missing")
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, "1.0", app.VersionInfo)
	assert.Equal(t, "MIT", app.LicenseDeclared)
	assert.Equal(t, "https://acme.example/app", app.Homepage)
	assert.Equal(t, "https://github.com/acme/app/archive/v1.0.tar.gz", app.DownloadLocation)

	lib, ok := byID[spdxID(libDrv)]
	require.True(t, ok, "library package missing")
	assert.Equal(t, "https://files.pythonhosted.org/packages/source/l/libfoo/libfoo-2.3.tar.gz", lib.DownloadLocation)
	assert.Empty(t, lib.LicenseDeclared)
}

func TestDumpSPDXNoDownloadURLIsNoAssertion(t *testing.T) {
	g := buildBareGraph(t)

	data, err := DumpSPDX(g, jsonOptions())
	require.NoError(t, err)

	var doc spdxDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotEmpty(t, doc.Packages)
	assert.Equal(t, "NOASSERTION", doc.Packages[0].DownloadLocation)
}

func TestDumpSPDXRelationships(t *testing.T) {
	g := buildTestGraph(t)

	data, err := DumpSPDX(g, jsonOptions())
	require.NoError(t, err)

	var doc spdxDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	var kinds []string
	for _, rel := range doc.Relationships {
		kinds = append(kinds, rel.RelationshipType+" "+rel.SpdxElementID+" "+rel.RelatedSpdxElement)
	}
	assert.Contains(t, kinds, "DESCRIBES SPDXRef-DOCUMENT "+spdxID(appDrv))
	assert.Contains(t, kinds, "DEPENDS_ON "+spdxID(appDrv)+" "+spdxID(libDrv))
}

func TestDumpSPDXRejectsMultipleRoots(t *testing.T) {
	g := buildTwoRootGraph(t)

	_, err := DumpSPDX(g, jsonOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single root")
}

func TestSpdxIDSanitizesStorePaths(t *testing.T) {
	got := spdxID("/nix/store/abc123-hello_world-2.12.drv")
	assert.Equal(t, "SPDXRef-abc123-hello-world-2.12.drv", got)
}
