package render

import (
	"encoding/json"
	"fmt"

	"depscope/internal/graph"
	"depscope/internal/output"
)

// Document is the JSON form of a graph.
type Document struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// NewDocument captures g in node and edge order.
func NewDocument(g *graph.Graph) Document {
	return Document{Nodes: g.Nodes(), Edges: g.Edges()}
}

// JSON renders g as an indented node/edge document.
func JSON(g *graph.Graph) (string, error) {
	data, err := output.EncodeJSON(NewDocument(g))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseJSON reads back a JSON rendering. Every edge must reference nodes
// present in the document.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	known := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		known[n.ID] = true
	}
	for _, e := range doc.Edges {
		if !known[e.From] || !known[e.To] {
			return nil, fmt.Errorf("edge %s -> %s references an unknown node", e.From, e.To)
		}
	}
	return &doc, nil
}

// Graph rebuilds the graph described by the document.
func (d *Document) Graph() *graph.Graph {
	g := graph.New()
	for _, n := range d.Nodes {
		g.AddNode(n)
	}
	for _, e := range d.Edges {
		g.MergeEdge(e)
	}
	return g
}
