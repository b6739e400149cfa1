package refgraph

import (
	"slices"
	"sync"
)

// Builder records references while resources load. It is safe for
// concurrent use.
type Builder struct {
	mu    sync.Mutex
	edges map[string]map[string]int // from -> to -> sites
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{edges: make(map[string]map[string]int)}
}

// AddResource records a resource with no references yet.
func (b *Builder) AddResource(uri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.edges[uri] == nil {
		b.edges[uri] = make(map[string]int)
	}
}

// AddReference records one $ref site in from targeting to.
func (b *Builder) AddReference(from, to string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.edges[from] == nil {
		b.edges[from] = make(map[string]int)
	}
	b.edges[from][to]++
}

// Merge copies every resource and reference recorded by other into b.
func (b *Builder) Merge(other *Builder) {
	if other == nil || other == b {
		return
	}
	other.mu.Lock()
	snapshot := make(map[string]map[string]int, len(other.edges))
	for from, tos := range other.edges {
		c := make(map[string]int, len(tos))
		for to, n := range tos {
			c[to] = n
		}
		snapshot[from] = c
	}
	other.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	for from, tos := range snapshot {
		if b.edges[from] == nil {
			b.edges[from] = make(map[string]int)
		}
		for to, n := range tos {
			b.edges[from][to] += n
		}
	}
}

// Build returns the graph of resources reachable from root. When root was
// never recorded the graph is empty.
func (b *Builder) Build(root string) *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := &Graph{Root: root, Resources: make(map[string]*Node)}
	if _, ok := b.edges[root]; !ok {
		return g
	}

	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := g.Resources[cur]; seen {
			continue
		}
		node := &Node{URI: cur, IsRoot: cur == root}
		for to, n := range b.edges[cur] {
			node.Sites += n
			if to == cur {
				node.InternalSites += n
				continue
			}
			node.References = append(node.References, to)
			queue = append(queue, to)
		}
		slices.Sort(node.References)
		g.Resources[cur] = node
	}

	for _, key := range g.keys() {
		for _, to := range g.Resources[key].References {
			if dep := g.Resources[to]; dep != nil {
				dep.Referrers = append(dep.Referrers, key)
			}
		}
	}
	return g
}

// Build constructs a graph directly from an adjacency list.
func Build(root string, references map[string][]string) *Graph {
	b := NewBuilder()
	for from, tos := range references {
		b.AddResource(from)
		for _, to := range tos {
			b.AddResource(to)
			b.AddReference(from, to)
		}
	}
	return b.Build(root)
}
