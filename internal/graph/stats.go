package graph

// Stats is a read-only snapshot of aggregate graph metrics.
type Stats struct {
	NodeCount          int                 `json:"node_count" yaml:"node_count"`
	RootCount          int                 `json:"root_count" yaml:"root_count"`
	ReachableCounts    map[string]int      `json:"reachable_counts" yaml:"reachable_counts"`
	LongestPathLengths map[string]int      `json:"longest_path_lengths" yaml:"longest_path_lengths"`
	LongestPaths       map[string][]string `json:"longest_paths" yaml:"longest_paths"`
	PatchCount         int                 `json:"patch_count" yaml:"patch_count"`
	MetadataMatches    int                 `json:"metadata_matches" yaml:"metadata_matches"`
	PurlSchemes        map[string]int      `json:"purl_schemes" yaml:"purl_schemes"`
}

// StatsOptions selects between the reachability counting modes.
type StatsOptions struct {
	// SharedVisited shares one visited set across all roots, so nodes in
	// overlapping subgraphs are counted for the first root that reaches
	// them and for no other. The per-root counts then depend on root
	// evaluation order (lexical here). The default is a fresh visited set
	// per root, which counts every root's subgraph independently.
	SharedVisited bool
}

// Stats computes aggregate metrics over a finished graph. All traversal
// state is local to this call; computing stats concurrently on the same
// graph is safe.
func (g *Graph) Stats(opts StatsOptions) Stats {
	stats := Stats{
		NodeCount:          len(g.Nodes),
		RootCount:          len(g.Roots),
		ReachableCounts:    map[string]int{},
		LongestPathLengths: map[string]int{},
		LongestPaths:       map[string][]string{},
		PurlSchemes:        map[string]int{},
	}

	shared := map[string]bool{}
	memo := map[string][]string{}
	for _, root := range g.RootIDs() {
		visited := shared
		if !opts.SharedVisited {
			visited = map[string]bool{}
		}
		stats.ReachableCounts[root] = g.reachableCount(root, visited)

		path := g.longestPath(root, memo, map[string]bool{})
		stats.LongestPaths[root] = path
		stats.LongestPathLengths[root] = len(path) - 1
	}

	for _, node := range g.Nodes {
		stats.PatchCount += len(node.Patches)
		if node.Package != nil {
			stats.MetadataMatches++
		}
	}

	for scheme, count := range g.purlSchemeHistogram() {
		stats.PurlSchemes[scheme] = count
	}

	return stats
}

// reachableCount walks children and patches depth-first from root and
// returns the number of distinct nodes visited. Patch derivations are part
// of a node's build closure, so they count towards reachability even though
// they are not packages.
func (g *Graph) reachableCount(root string, visited map[string]bool) int {
	count := 0
	stack := []string{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		count++
		node, ok := g.Nodes[id]
		if !ok {
			continue
		}
		stack = append(stack, node.ChildIDs()...)
		stack = append(stack, node.PatchIDs()...)
	}
	return count
}

// longestPath returns the node names along the longest children-only path
// from id down to a leaf, id's own name included. The memo is shared across
// one stats computation so each node's downstream path is computed once.
func (g *Graph) longestPath(id string, memo map[string][]string, onPath map[string]bool) []string {
	if path, ok := memo[id]; ok {
		return path
	}
	node, ok := g.Nodes[id]
	if !ok {
		return nil
	}
	if onPath[id] {
		// A cycle in the store; treat the back edge as a leaf.
		return nil
	}
	onPath[id] = true

	var longest []string
	for _, child := range node.ChildIDs() {
		childPath := g.longestPath(child, memo, onPath)
		if len(childPath) > len(longest) {
			longest = childPath
		}
	}
	delete(onPath, id)

	name := node.Name()
	if name == "" {
		name = id
	}
	path := append([]string{name}, longest...)
	memo[id] = path
	return path
}

// purlSchemeHistogram tallies the purl scheme of every node reachable from
// the roots via children. Patches are not traversed; they are not packages.
func (g *Graph) purlSchemeHistogram() map[string]int {
	histogram := map[string]int{}
	visited := map[string]bool{}
	queue := g.RootIDs()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		node, ok := g.Nodes[id]
		if !ok {
			continue
		}
		histogram[node.Purl().Scheme]++
		queue = append(queue, node.ChildIDs()...)
	}
	return histogram
}
