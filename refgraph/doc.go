// Package refgraph describes how loaded schema resources reference each
// other.
//
// Every node is a resource identified by its key URI. An edge A -> B means
// some $ref inside A targets B. References that stay inside a resource are
// counted on the node but do not form edges, so HasCycles only reports
// cycles between resources:
//
//	g := cache.Graph("https://example.com/root.json")
//	if g.HasCycles() {
//	    for _, c := range g.FindCycles() {
//	        fmt.Println(strings.Join(c, " -> "))
//	    }
//	}
//
// The graph can be rendered as Graphviz DOT, as an indented text tree, or
// as JSON.
package refgraph
