package output

import (
	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
)

// DumpStats encodes the graph's aggregate statistics.
func DumpStats(g *graph.Graph, opts Options) ([]byte, error) {
	return marshal(g.Stats(graph.StatsOptions{}), opts)
}
