package output

import (
	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
)

// nativePackage is one record of the tool's own output format: a flat,
// source-focused view of the graph meant for diffing and scripting rather
// than for SBOM interchange.
type nativePackage struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Purl    string `json:"purl" yaml:"purl"`

	GitURLs      []string `json:"git_urls" yaml:"git_urls"`
	DownloadURLs []string `json:"download_urls" yaml:"download_urls"`
	Homepages    []string `json:"homepages" yaml:"homepages"`

	SourceDerivation string `json:"source_derivation" yaml:"source_derivation"`
}

// DumpNative encodes the graph in the native format: one record per node
// that has a source archive, sorted by id. Nodes without a source
// derivation (fetch leaves, tooling, inline scripts) are left out.
func DumpNative(g *graph.Graph, opts Options) ([]byte, error) {
	reachable := runtimeReachable(g, opts)

	packages := []nativePackage{}
	for _, id := range g.IDs() {
		if !includeNode(g, id, reachable) {
			continue
		}
		node := g.Nodes[id]
		sourceID := node.SourceID()
		if sourceID == "" {
			continue
		}
		packages = append(packages, nativePackage{
			ID:               id,
			Name:             node.Name(),
			Version:          node.Version(),
			Purl:             node.Purl().String(),
			GitURLs:          emptyNotNil(node.GitURLs()),
			DownloadURLs:     emptyNotNil(node.DownloadURLs()),
			Homepages:        emptyNotNil(node.Homepages()),
			SourceDerivation: sourceID,
		})
	}

	return marshal(packages, opts)
}

// emptyNotNil keeps empty lists rendering as [] rather than null.
func emptyNotNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
