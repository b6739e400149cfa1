package refgraph

import (
	"maps"
	"slices"
)

func (g *Graph) keys() []string {
	return slices.Sorted(maps.Keys(g.Resources))
}

// Get returns the node for uri, or nil.
func (g *Graph) Get(uri string) *Node {
	return g.Resources[uri]
}

// Contains reports whether uri is in the graph.
func (g *Graph) Contains(uri string) bool {
	_, ok := g.Resources[uri]
	return ok
}

// DirectDeps returns the resources uri refers to.
func (g *Graph) DirectDeps(uri string) []string {
	if node := g.Resources[uri]; node != nil {
		return node.References
	}
	return nil
}

// DirectDependents returns the resources that refer to uri.
func (g *Graph) DirectDependents(uri string) []string {
	if node := g.Resources[uri]; node != nil {
		return node.Referrers
	}
	return nil
}

// TransitiveDeps returns every resource reachable from uri, breadth-first.
func (g *Graph) TransitiveDeps(uri string) []string {
	return g.walk(uri, func(n *Node) []string { return n.References })
}

// TransitiveDependents returns every resource that reaches uri,
// closest first.
func (g *Graph) TransitiveDependents(uri string) []string {
	return g.walk(uri, func(n *Node) []string { return n.Referrers })
}

func (g *Graph) walk(start string, next func(*Node) []string) []string {
	result := make([]string, 0)
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Resources[current]
		if node == nil {
			continue
		}
		for _, dep := range next(node) {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}
	return result
}

// Path finds the shortest reference path from one resource to another.
// Returns nil if no path exists.
func (g *Graph) Path(from, to string) []string {
	if from == to {
		return []string{from}
	}

	type queueItem struct {
		uri  string
		path []string
	}

	visited := map[string]bool{from: true}
	queue := []queueItem{{uri: from, path: []string{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Resources[current.uri]
		if node == nil {
			continue
		}
		for _, dep := range node.References {
			if dep == to {
				return append(current.path, dep)
			}
			if !visited[dep] {
				visited[dep] = true
				newPath := make([]string, len(current.path)+1)
				copy(newPath, current.path)
				newPath[len(current.path)] = dep
				queue = append(queue, queueItem{uri: dep, path: newPath})
			}
		}
	}
	return nil
}

// Leaves returns the resources that refer to nothing else.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, key := range g.keys() {
		if len(g.Resources[key].References) == 0 {
			leaves = append(leaves, key)
		}
	}
	return leaves
}

// HasCycles reports whether resources refer to each other cyclically.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}

// FindCycles returns every cycle met by a depth-first walk in key order.
// Each cycle starts at the resource where the walk entered it.
func (g *Graph) FindCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	path := make([]string, 0)

	var visit func(key string)
	visit = func(key string) {
		visited[key] = true
		onStack[key] = true
		path = append(path, key)

		if node := g.Resources[key]; node != nil {
			for _, dep := range node.References {
				if !visited[dep] {
					visit(dep)
					continue
				}
				if !onStack[dep] {
					continue
				}
				start := slices.Index(path, dep)
				if start >= 0 {
					cycles = append(cycles, slices.Clone(path[start:]))
				}
			}
		}

		path = path[:len(path)-1]
		onStack[key] = false
	}

	for _, key := range g.keys() {
		if !visited[key] {
			visit(key)
		}
	}
	return cycles
}

// Stats returns summary counts for the graph.
func (g *Graph) Stats() Stats {
	stats := Stats{TotalResources: len(g.Resources)}
	if root := g.Resources[g.Root]; root != nil {
		stats.DirectReferences = len(root.References)
		stats.TransitiveReferences = max(stats.TotalResources-stats.DirectReferences-1, 0)
	}
	for _, node := range g.Resources {
		stats.ReferenceSites += node.Sites
	}
	stats.MaxDepth = g.maxDepth()
	return stats
}

func (g *Graph) maxDepth() int {
	depths := make(map[string]int)
	onPath := make(map[string]bool)
	var deepest int

	var dfs func(key string, depth int)
	dfs = func(key string, depth int) {
		if onPath[key] {
			return
		}
		if d, ok := depths[key]; ok && d >= depth {
			return
		}
		depths[key] = depth
		deepest = max(deepest, depth)

		node := g.Resources[key]
		if node == nil {
			return
		}
		onPath[key] = true
		for _, dep := range node.References {
			dfs(dep, depth+1)
		}
		delete(onPath, key)
	}

	dfs(g.Root, 0)
	return deepest
}
