// Package graph builds the semantic package graph from a derivation store
// and exposes the read interface consumed by the SBOM encoders.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/StinkyLord/nix-sbom-builder/internal/infer"
	"github.com/StinkyLord/nix-sbom-builder/internal/model"
)

// ErrMissingInput is returned when a derivation references an input that is
// not in the store. The store export is recursive, so this means the input
// document itself is inconsistent.
var ErrMissingInput = errors.New("not in the store")

// Source is a fetched source archive feeding a package node. Source archives
// are inputs of a package, not packages themselves.
type Source struct {
	ID         string
	Derivation *model.Derivation
}

// Node wraps exactly one derivation, enriched with classified dependency
// edges and optional name-matched metadata.
type Node struct {
	ID             string
	MainDerivation *model.Derivation
	Package        *model.Package // nil unless name-matched

	Children map[string]bool // derivation ids of downstream package dependencies
	Patches  map[string]bool // derivation ids whose output is one of this node's patches
	Sources  []Source
}

// Graph is the full package graph: one node per derivation in the store.
type Graph struct {
	Nodes map[string]*Node
	Roots map[string]bool // ids never referenced as an input of another node
}

// Build constructs the package graph from a derivation store and an optional
// metadata index. Per derivation, every referenced input is classified as a
// patch, a source archive, or an ordinary child, in that priority order.
// Whether a child is "really" a package is deliberately not decided here:
// name-matching against metadata is unreliable, and dropping an edge on a
// failed match would silently lose real dependencies. Consumers make that
// call through the inference accessors.
//
// Roots are computed in a second pass, once the full edge set exists: a
// node's root status cannot be known before every other node's inputs have
// been seen.
func Build(derivations model.Derivations, packages model.Packages, logger hclog.Logger) (*Graph, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	g := &Graph{
		Nodes: make(map[string]*Node, len(derivations)),
		Roots: map[string]bool{},
	}
	referenced := map[string]bool{}

	for id, drv := range derivations {
		// Surface stale mirror aliases now rather than in the middle of
		// an encoder run.
		if _, err := drv.URLs(); err != nil {
			return nil, fmt.Errorf("derivation %s: %w", id, err)
		}

		node := &Node{
			ID:             id,
			MainDerivation: drv,
			Package:        matchPackage(drv, packages),
			Children:       map[string]bool{},
			Patches:        map[string]bool{},
		}

		patchPaths := map[string]bool{}
		for _, p := range drv.Patches() {
			patchPaths[p] = true
		}
		srcPath := drv.EnvSrc()

		for inputID := range drv.InputDrvs {
			inputDrv, ok := derivations[inputID]
			if !ok {
				return nil, fmt.Errorf(
					"derivation %s references input %s which is %w",
					id, inputID, ErrMissingInput)
			}
			outPath := inputDrv.OutPath()
			switch {
			case patchPaths[outPath]:
				node.Patches[inputID] = true
			case srcPath != "" && outPath == srcPath:
				node.Sources = append(node.Sources, Source{ID: inputID, Derivation: inputDrv})
			default:
				node.Children[inputID] = true
			}
			referenced[inputID] = true
		}

		sort.Slice(node.Sources, func(i, j int) bool {
			return node.Sources[i].ID < node.Sources[j].ID
		})
		g.Nodes[id] = node
	}

	for id := range g.Nodes {
		if !referenced[id] {
			g.Roots[id] = true
		}
	}

	for _, id := range g.IDs() {
		node := g.Nodes[id]
		if node.Name() == "" {
			logger.Debug("no name could be inferred for derivation", "id", id)
		}
	}

	return g, nil
}

// matchPackage looks up the metadata record for a derivation by its declared
// pname, then its full name.
func matchPackage(drv *model.Derivation, packages model.Packages) *model.Package {
	if len(packages) == 0 {
		return nil
	}
	if pkg, ok := packages[drv.EnvPName()]; ok && drv.EnvPName() != "" {
		return pkg
	}
	if pkg, ok := packages[drv.EnvName()]; ok && drv.EnvName() != "" {
		return pkg
	}
	return nil
}

// IDs returns every node id in lexical order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RootIDs returns the root node ids in lexical order.
func (g *Graph) RootIDs() []string {
	ids := make([]string, 0, len(g.Roots))
	for id := range g.Roots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ChildIDs returns the node's child ids in lexical order.
func (n *Node) ChildIDs() []string {
	return sortedKeys(n.Children)
}

// PatchIDs returns the node's patch ids in lexical order.
func (n *Node) PatchIDs() []string {
	return sortedKeys(n.Patches)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Name returns the inferred package name, or "" when inference misses.
func (n *Node) Name() string {
	return infer.Name(n.MainDerivation, n.Package)
}

// Version returns the inferred version, or "" when inference misses.
func (n *Node) Version() string {
	return infer.Version(n.MainDerivation, n.Package)
}

// Purl returns the inferred package-url.
func (n *Node) Purl() infer.PackageURL {
	return infer.Purl(n.MainDerivation, n.Package)
}

// IsInlineScript reports whether the node wraps an inline build script
// rather than a real package. Such nodes are excluded from package-facing
// SBOM output.
func (n *Node) IsInlineScript() bool {
	return n.MainDerivation.IsInlineScript()
}

// Description returns the metadata description, if any.
func (n *Node) Description() string {
	if n.Package == nil {
		return ""
	}
	return n.Package.Meta.Description
}

// Homepages returns the metadata homepages, if any.
func (n *Node) Homepages() []string {
	if n.Package == nil {
		return nil
	}
	return n.Package.Meta.Homepage
}

// Licenses returns the metadata licenses, if any.
func (n *Node) Licenses() []model.License {
	if n.Package == nil {
		return nil
	}
	return n.Package.Meta.License
}

// Maintainers returns the metadata maintainers, if any.
func (n *Node) Maintainers() []model.Maintainer {
	if n.Package == nil {
		return nil
	}
	return n.Package.Meta.Maintainers
}

// DownloadURLs returns the download URLs declared by the main derivation
// and its source archives.
func (n *Node) DownloadURLs() []string {
	var urls []string
	if u := n.MainDerivation.FirstURL(); u != "" {
		urls = append(urls, u)
	}
	for _, src := range n.Sources {
		if u := src.Derivation.FirstURL(); u != "" {
			urls = appendUnique(urls, u)
		}
	}
	return urls
}

// URL returns the node's primary download URL, or "" if none is declared.
func (n *Node) URL() string {
	urls := n.DownloadURLs()
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// GitURLs derives cloneable git URLs from the node's download URLs.
func (n *Node) GitURLs() []string {
	var gitURLs []string
	for _, u := range n.DownloadURLs() {
		if gitURL := infer.GitURLFromGenericURL(u); gitURL != "" {
			gitURLs = appendUnique(gitURLs, gitURL)
		}
	}
	return gitURLs
}

// SourceID returns the id of the node's first source archive derivation,
// or "" when the node has none.
func (n *Node) SourceID() string {
	if len(n.Sources) == 0 {
		return ""
	}
	return n.Sources[0].ID
}

func appendUnique(slice []string, s string) []string {
	for _, v := range slice {
		if v == s {
			return slice
		}
	}
	return append(slice, s)
}
