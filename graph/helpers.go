package graph

import (
	"github.com/teranos/provgraph/prov"
)

// metadataFrom copies motif attributes into node metadata, dropping the
// attributes already carried by the node's id, type and label.
func metadataFrom(attrs prov.Attrs) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	metadata := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		switch k {
		case prov.AttrKind, prov.AttrArtifactID, prov.AttrTypeURN:
			continue
		}
		metadata[k] = v
	}
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}
