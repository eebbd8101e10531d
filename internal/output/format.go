// Package output provides SBOM serializers. Encoders consume the finished
// package graph through its read interface only; no graph logic lives here.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
)

// Format selects the SBOM document format.
type Format int

const (
	FormatCycloneDX Format = iota
	FormatSPDX
	FormatNative
	FormatPretty
	FormatStats
)

// FormatFromString parses a format name as given on the command line.
func FormatFromString(s string) (Format, error) {
	switch {
	case strings.HasSuffix(s, "spdx"):
		return FormatSPDX, nil
	case strings.HasSuffix(s, "cdx") || strings.HasSuffix(s, "cyclonedx"):
		return FormatCycloneDX, nil
	case strings.HasSuffix(s, "pretty"):
		return FormatPretty, nil
	case strings.HasSuffix(s, "stats"):
		return FormatStats, nil
	case strings.HasSuffix(s, "native"):
		return FormatNative, nil
	default:
		return 0, fmt.Errorf("unsupported format %q (supported: cyclonedx, spdx, native, pretty, stats)", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatCycloneDX:
		return "CycloneDX"
	case FormatSPDX:
		return "SPDX"
	case FormatNative:
		return "native"
	case FormatPretty:
		return "pretty-print"
	case FormatStats:
		return "stats"
	default:
		return "unknown"
	}
}

// Serialization selects the document encoding.
type Serialization int

const (
	SerializationJSON Serialization = iota
	SerializationYAML
)

// SerializationFromString parses a serialization name. XML is recognized
// but rejected: none of the supported formats encode to it here.
func SerializationFromString(s string) (Serialization, error) {
	switch {
	case strings.HasSuffix(s, "json"):
		return SerializationJSON, nil
	case strings.HasSuffix(s, "yaml") || strings.HasSuffix(s, "yml"):
		return SerializationYAML, nil
	case strings.HasSuffix(s, "xml"):
		return 0, fmt.Errorf("xml serialization is not supported yet")
	default:
		return 0, fmt.Errorf("unsupported serialization %q (supported: json, yaml)", s)
	}
}

// Options carries the encoder settings shared across formats.
type Options struct {
	Serialization Serialization
	Compact       bool

	// RuntimeOnly restricts the emitted components to nodes reachable
	// from the roots via ordinary children, leaving out derivations that
	// only feed the build as patches or source archives.
	RuntimeOnly bool

	ToolVersion string

	// Display applies to the pretty-print format only.
	Display graph.DisplayOptions
}

// Write encodes the graph in the given format and writes the document to
// outputPath ("-" for stdout).
func Write(g *graph.Graph, f Format, opts Options, outputPath string) error {
	var data []byte
	var err error
	switch f {
	case FormatCycloneDX:
		data, err = DumpCycloneDX(g, opts)
	case FormatSPDX:
		data, err = DumpSPDX(g, opts)
	case FormatNative:
		data, err = DumpNative(g, opts)
	case FormatStats:
		data, err = DumpStats(g, opts)
	case FormatPretty:
		data = []byte(g.PrettyPrint(opts.Display))
	default:
		err = fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s output: %w", f, err)
	}
	return writeOut(outputPath, data)
}

// marshal encodes v per the selected serialization.
func marshal(v any, opts Options) ([]byte, error) {
	if opts.Serialization == SerializationYAML {
		return yaml.Marshal(v)
	}
	if opts.Compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// writeOut writes data to outputPath, or stdout if outputPath is "-".
func writeOut(outputPath string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if outputPath == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0644)
}

// runtimeReachable returns the set of node ids reachable from the roots via
// children, or nil when the restriction is off.
func runtimeReachable(g *graph.Graph, opts Options) map[string]bool {
	if !opts.RuntimeOnly {
		return nil
	}
	reachable := map[string]bool{}
	queue := g.RootIDs()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		if node, ok := g.Nodes[id]; ok {
			queue = append(queue, node.ChildIDs()...)
		}
	}
	return reachable
}

// includeNode reports whether a node belongs in package-facing output.
func includeNode(g *graph.Graph, id string, reachable map[string]bool) bool {
	node, ok := g.Nodes[id]
	if !ok {
		return false
	}
	if node.IsInlineScript() {
		return false
	}
	if reachable != nil && !reachable[id] {
		return false
	}
	return true
}
