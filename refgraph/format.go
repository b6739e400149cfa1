package refgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const separatorWidth = 60

// ToDOT renders the graph in Graphviz DOT format.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer

	buf.WriteString("digraph references {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n\n")

	keys := g.keys()
	for _, key := range keys {
		node := g.Resources[key]
		attrs := ""
		if node.IsRoot {
			attrs = " [style=bold]"
		}
		fmt.Fprintf(&buf, "  %q%s;\n", key, attrs)
	}

	buf.WriteString("\n")

	for _, key := range keys {
		for _, dep := range g.Resources[key].References {
			fmt.Fprintf(&buf, "  %q -> %q;\n", key, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText renders the graph as a summary followed by an indented tree.
func (g *Graph) ToText() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Reference Graph (root: %s)\n", g.Root)
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	stats := g.Stats()
	fmt.Fprintf(&buf, "Resources: %d\n", stats.TotalResources)
	fmt.Fprintf(&buf, "Direct references: %d\n", stats.DirectReferences)
	fmt.Fprintf(&buf, "Transitive references: %d\n", stats.TransitiveReferences)
	fmt.Fprintf(&buf, "Reference sites: %d\n", stats.ReferenceSites)
	fmt.Fprintf(&buf, "Max depth: %d\n\n", stats.MaxDepth)

	buf.WriteString("Reference Tree:\n")
	g.printTree(&buf, g.Root, "", true, make(map[string]bool))
	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, key, prefix string, isLast bool, visited map[string]bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		buf.WriteString(key)
	} else {
		buf.WriteString(prefix + connector + key)
	}

	if visited[key] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")

	visited[key] = true
	defer func() { visited[key] = false }()

	node := g.Resources[key]
	if node == nil {
		return
	}

	for i, dep := range node.References {
		childPrefix := prefix
		if prefix != "" {
			if isLast {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		} else {
			childPrefix = " "
		}
		g.printTree(buf, dep, childPrefix, i == len(node.References)-1, visited)
	}
}

type jsonNode struct {
	URI        string   `json:"uri"`
	References []string `json:"references,omitempty"`
	Referrers  []string `json:"referrers,omitempty"`
	Sites      int      `json:"sites,omitempty"`
	Root       bool     `json:"root,omitempty"`
}

// ToJSON renders the nodes as a JSON array sorted by URI.
func (g *Graph) ToJSON() ([]byte, error) {
	nodes := make([]jsonNode, 0, len(g.Resources))
	for _, key := range g.keys() {
		n := g.Resources[key]
		nodes = append(nodes, jsonNode{
			URI:        n.URI,
			References: n.References,
			Referrers:  n.Referrers,
			Sites:      n.Sites,
			Root:       n.IsRoot,
		})
	}
	return json.MarshalIndent(nodes, "", "  ")
}
