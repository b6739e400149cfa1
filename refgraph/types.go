package refgraph

// Graph is the reference graph of the resources reachable from Root.
type Graph struct {
	// Root is the key URI the graph was built from.
	Root string

	// Resources contains every node, keyed by key URI.
	Resources map[string]*Node
}

// Node is one loaded resource.
type Node struct {
	// URI is the key URI of the resource.
	URI string

	// References are the resources this one refers to, sorted.
	References []string

	// Referrers are the resources that refer to this one, sorted.
	Referrers []string

	// Sites counts the $ref occurrences inside this resource.
	Sites int

	// InternalSites counts the $ref occurrences that target this resource
	// itself.
	InternalSites int

	// IsRoot is true for the graph's root.
	IsRoot bool
}

// Stats summarises a graph.
type Stats struct {
	// TotalResources is the number of nodes.
	TotalResources int

	// DirectReferences is the number of resources the root refers to.
	DirectReferences int

	// TransitiveReferences counts the remaining reachable resources.
	TransitiveReferences int

	// MaxDepth is the longest acyclic reference chain from the root.
	MaxDepth int

	// ReferenceSites is the total number of $ref occurrences.
	ReferenceSites int
}
