package graph

import (
	"sort"

	"github.com/teranos/provgraph/internal/util"
)

// TypeStyle holds display metadata for a node type.
type TypeStyle struct {
	Color   string  `mapstructure:"color"`
	Label   string  `mapstructure:"label"`
	Group   int     `mapstructure:"group"`
	Opacity float64 `mapstructure:"opacity"`
}

// Styles maps node and link types to display metadata. Types without an
// entry fall back to defaults.
type Styles struct {
	Nodes map[string]TypeStyle         `mapstructure:"nodes"`
	Links map[string]RelationshipStyle `mapstructure:"links"`
}

// DefaultStyles colors steps and frames; artifact types stay untyped gray.
func DefaultStyles() Styles {
	return Styles{
		Nodes: map[string]TypeStyle{
			TypeStep:  {Color: "#f39c12", Label: "Step", Group: 1},
			TypeFrame: {Color: "#3498db", Label: "Frame", Group: 2},
		},
		Links: map[string]RelationshipStyle{
			// Frames cluster tightly around their parent
			LinkFrameChild: {Label: "Frame child", LinkDistance: util.Ptr(40.0), LinkStrength: util.Ptr(0.8)},
		},
	}
}

// over fills unset fields of s from base.
func (s TypeStyle) over(base TypeStyle) TypeStyle {
	if s.Color == "" {
		s.Color = base.Color
	}
	if s.Label == "" {
		s.Label = base.Label
	}
	if s.Group == 0 {
		s.Group = base.Group
	}
	if s.Opacity == 0 {
		s.Opacity = base.Opacity
	}
	return s
}

func (s Styles) node(nodeType string) (TypeStyle, bool) {
	style, ok := s.Nodes[nodeType]
	return style, ok
}

// collectNodeTypeInfo counts node types present in the graph and attaches
// their style. Most common types come first, ties by type name.
func collectNodeTypeInfo(nodes []Node, styles Styles) []NodeTypeInfo {
	typeCounts := make(map[string]int)
	for _, node := range nodes {
		typeCounts[node.Type]++
	}

	var nodeTypes []NodeTypeInfo
	for nodeType, count := range typeCounts {
		info := NodeTypeInfo{
			Type:  nodeType,
			Label: nodeType,
			Color: defaultUntypedColor,
			Count: count,
		}
		if style, ok := styles.node(nodeType); ok {
			if style.Label != "" {
				info.Label = style.Label
			}
			if style.Color != "" {
				info.Color = style.Color
			}
			if style.Opacity > 0 {
				opacity := style.Opacity
				info.Opacity = &opacity
			}
		}
		nodeTypes = append(nodeTypes, info)
	}

	sort.Slice(nodeTypes, func(i, j int) bool {
		if nodeTypes[i].Count != nodeTypes[j].Count {
			return nodeTypes[i].Count > nodeTypes[j].Count
		}
		return nodeTypes[i].Type < nodeTypes[j].Type
	})
	return nodeTypes
}
