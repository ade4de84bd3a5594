package schema

import (
	"strings"

	"github.com/teranos/provgraph/attach"
	"github.com/teranos/provgraph/errors"
)

// AllowedKinds flattens the kind tree into the set of kind paths an artifact
// of some type may occupy, keyed by the dotted kind path with every artifact
// position replaced by "*".
func (s *OperationSchema) AllowedKinds() map[string][]string {
	out := make(map[string][]string)
	var walk func(prefix []string, kinds []KindSchema)
	walk = func(prefix []string, kinds []KindSchema) {
		for _, k := range kinds {
			path := append(append([]string{}, prefix...), k.KindURN)
			key := strings.Join(path, attach.PathSeparator)
			for _, t := range k.Types {
				out[key] = append(out[key], t.TypeURN)
				walk(append(append([]string{}, path...), "*"), t.ChildKinds)
			}
		}
	}
	walk(nil, s.Attachments.ChildKinds)
	return out
}

// ValidateAttachments checks every node of an attachment graph against the
// kind tree. typeOf resolves an artifact id to its type URN; unknown artifacts
// are reported.
func (s *OperationSchema) ValidateAttachments(g *attach.Graph, typeOf func(id string) (string, bool)) error {
	allowed := s.AllowedKinds()
	var problems []string
	for _, n := range g.Nodes() {
		if n.IsRoot() {
			continue
		}
		key := genericKindPath(n.KindPath)
		types, ok := allowed[key]
		if !ok {
			problems = append(problems, "kind "+n.KindURN()+" is not declared")
			continue
		}
		typeURN, ok := typeOf(n.ArtifactID)
		if !ok {
			problems = append(problems, "artifact "+n.ArtifactID+" is unknown")
			continue
		}
		if !contains(types, typeURN) {
			problems = append(problems, "artifact "+n.ArtifactID+" of type "+typeURN+" not allowed at "+n.KindURN())
		}
	}
	if len(problems) > 0 {
		return errors.WithDetail(
			errors.Invalidf("operation type %s: %d attachment problem(s)", s.TypeURN, len(problems)),
			strings.Join(problems, "\n"),
		)
	}
	return nil
}

// genericKindPath replaces the artifact ids of a kind path (odd positions)
// with "*".
func genericKindPath(kindPath []string) string {
	parts := make([]string, len(kindPath))
	for i, seg := range kindPath {
		if i%2 == 1 {
			parts[i] = "*"
		} else {
			parts[i] = seg
		}
	}
	return strings.Join(parts, attach.PathSeparator)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
