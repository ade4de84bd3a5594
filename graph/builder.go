// Package graph renders provenance and frame graphs as node/link documents
// for force-directed visualization.
package graph

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/logger"
)

// Builder renders graphs with a fixed set of styles.
type Builder struct {
	styles Styles
	logger *zap.SugaredLogger
}

// NewBuilder creates a builder. Fields left unset in styles fall back to
// DefaultStyles.
func NewBuilder(styles Styles, log *zap.SugaredLogger) *Builder {
	merged := DefaultStyles()
	for k, v := range styles.Nodes {
		merged.Nodes[k] = v.over(merged.Nodes[k])
	}
	for k, v := range styles.Links {
		merged.Links[k] = v.over(merged.Links[k])
	}
	return &Builder{
		styles: merged,
		logger: logger.OrNop(log).Named("graph.builder"),
	}
}

// assembly collects nodes and links by id before they are flattened into a
// Graph with deterministic ordering.
type assembly struct {
	styles  Styles
	nodeMap map[string]*Node
	linkMap map[string]*Link
}

func (b *Builder) newAssembly() *assembly {
	return &assembly{
		styles:  b.styles,
		nodeMap: make(map[string]*Node),
		linkMap: make(map[string]*Link),
	}
}

// addNode returns the node for id, creating it on first sight.
func (a *assembly) addNode(id, kind, nodeType, label string) *Node {
	if node, exists := a.nodeMap[id]; exists {
		return node
	}
	node := &Node{ID: id, Kind: kind, Type: nodeType, Label: label}
	if style, ok := a.styles.node(nodeType); ok {
		node.Group = style.Group
	}
	a.nodeMap[id] = node
	return node
}

func (a *assembly) addLink(source, target, linkType, label string) {
	linkID := fmt.Sprintf("%s_%s_%s", source, linkType, target)
	if link, exists := a.linkMap[linkID]; exists {
		link.Weight += linkWeightIncrement
		return
	}
	a.linkMap[linkID] = &Link{
		Source: source,
		Target: target,
		Type:   linkType,
		Weight: defaultLinkWeight,
		Label:  label,
	}
}

func (a *assembly) finish(source, description string) *Graph {
	graph := &Graph{
		Nodes: []Node{},
		Links: []Link{},
		Meta: Meta{
			GeneratedAt: time.Now(),
			Source:      source,
			Description: description,
		},
	}

	nodeIDs := make([]string, 0, len(a.nodeMap))
	for id := range a.nodeMap {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		graph.Nodes = append(graph.Nodes, *a.nodeMap[id])
	}

	linkIDs := make([]string, 0, len(a.linkMap))
	for id := range a.linkMap {
		linkIDs = append(linkIDs, id)
	}
	sort.Strings(linkIDs)
	for _, id := range linkIDs {
		graph.Links = append(graph.Links, *a.linkMap[id])
	}

	graph.Meta.Stats.TotalNodes = len(graph.Nodes)
	graph.Meta.Stats.TotalEdges = len(graph.Links)
	graph.Meta.NodeTypes = collectNodeTypeInfo(graph.Nodes, a.styles)
	graph.Meta.RelationshipTypes = collectRelationshipTypeInfo(graph.Links, a.styles)
	return graph
}
