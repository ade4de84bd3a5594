package graph

import (
	"sort"
)

// RelationshipStyle holds physics and display metadata for a link type.
type RelationshipStyle struct {
	Label        string   `mapstructure:"label"`
	Color        string   `mapstructure:"color"`
	LinkDistance *float64 `mapstructure:"link_distance"` // D3 force distance (nil = use default)
	LinkStrength *float64 `mapstructure:"link_strength"` // D3 force strength (nil = use default)
}

// over fills unset fields of s from base.
func (s RelationshipStyle) over(base RelationshipStyle) RelationshipStyle {
	if s.Label == "" {
		s.Label = base.Label
	}
	if s.Color == "" {
		s.Color = base.Color
	}
	if s.LinkDistance == nil {
		s.LinkDistance = base.LinkDistance
	}
	if s.LinkStrength == nil {
		s.LinkStrength = base.LinkStrength
	}
	return s
}

// collectRelationshipTypeInfo counts link types present in the graph and
// attaches their style. Most common types come first, ties by type name.
func collectRelationshipTypeInfo(links []Link, styles Styles) []RelationshipTypeInfo {
	typeCounts := make(map[string]int)
	for _, link := range links {
		typeCounts[link.Type]++
	}

	var relationshipTypes []RelationshipTypeInfo
	for linkType, count := range typeCounts {
		info := RelationshipTypeInfo{
			Type:  linkType,
			Label: linkType,
			Count: count,
		}
		if style, ok := styles.Links[linkType]; ok {
			if style.Label != "" {
				info.Label = style.Label
			}
			info.Color = style.Color
			info.LinkDistance = style.LinkDistance
			info.LinkStrength = style.LinkStrength
		}
		relationshipTypes = append(relationshipTypes, info)
	}

	sort.Slice(relationshipTypes, func(i, j int) bool {
		if relationshipTypes[i].Count != relationshipTypes[j].Count {
			return relationshipTypes[i].Count > relationshipTypes[j].Count
		}
		return relationshipTypes[i].Type < relationshipTypes[j].Type
	})
	return relationshipTypes
}
