package graph

import (
	"strings"
)

// DisplayOptions controls the pretty-printed rendering of a graph.
type DisplayOptions struct {
	// MaxDepth bounds how deep below the roots the tree is rendered.
	// 0 means no bound.
	MaxDepth int

	// IncludeStdenv renders standard-toolchain packages (autoconf,
	// libtool, zlib, ...) that are filtered out by default.
	IncludeStdenv bool

	// OutPathsOnly prints each node's store output path instead of its purl.
	OutPathsOnly bool

	// ShowDetails adds nested detail lines (id, download URL) under each node.
	ShowDetails bool
}

// stdenvPrefixes is the denylist of standard-toolchain package-name
// prefixes hidden from pretty-printed output unless explicitly requested.
var stdenvPrefixes = []string{
	"acl",
	"attr",
	"autoconf",
	"automake",
	"bash",
	"binutils",
	"bison",
	"bootstrap-stage",
	"bzip2",
	"cc-wrapper",
	"coreutils",
	"diffutils",
	"ed",
	"expand-response-params",
	"file",
	"findutils",
	"flex",
	"gawk",
	"gcc",
	"gettext",
	"glibc",
	"gmp",
	"gnu-config",
	"gnugrep",
	"gnum4",
	"gnumake",
	"gnused",
	"gnutar",
	"gzip",
	"hook",
	"ld-wrapper",
	"libtool",
	"patch",
	"patchelf",
	"perl",
	"pkg-config",
	"stdenv",
	"texinfo",
	"which",
	"xz",
	"zlib",
}

// isStdenvName reports whether a package name belongs to the standard
// build toolchain.
func isStdenvName(name string) bool {
	for _, prefix := range stdenvPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// PrettyPrint renders the graph as an indented line sequence, one line per
// node, starting from the roots.
func (g *Graph) PrettyPrint(opts DisplayOptions) string {
	var b strings.Builder
	for _, root := range g.RootIDs() {
		g.printNode(&b, root, 0, opts, map[string]bool{})
	}
	return b.String()
}

func (g *Graph) printNode(b *strings.Builder, id string, depth int, opts DisplayOptions, onPath map[string]bool) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return
	}
	if onPath[id] {
		return
	}
	node, ok := g.Nodes[id]
	if !ok {
		return
	}
	if !opts.IncludeStdenv && isStdenvName(node.Name()) {
		return
	}

	indent := strings.Repeat("  ", depth)
	if opts.OutPathsOnly {
		b.WriteString(indent + node.MainDerivation.OutPath() + "\n")
	} else {
		b.WriteString(indent + node.Purl().String() + "\n")
	}
	if opts.ShowDetails {
		b.WriteString(indent + "  id: " + node.ID + "\n")
		if url := node.URL(); url != "" {
			b.WriteString(indent + "  url: " + url + "\n")
		}
	}

	onPath[id] = true
	for _, child := range node.ChildIDs() {
		g.printNode(b, child, depth+1, opts, onPath)
	}
	delete(onPath, id)
}
