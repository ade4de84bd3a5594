package attach

import (
	"regexp"
	"strings"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
)

// FindOption narrows FindNodes to one exact-match dimension.
type FindOption func(*findFilter)

type findFilter struct {
	kindPath           *string
	artifactID         *string
	mode               *Mode
	parentArtifactPath *string
}

// ByKindPath matches nodes at exactly this kind path.
func ByKindPath(kindPath ...string) FindOption {
	urn := joinPath(kindPath)
	return func(f *findFilter) { f.kindPath = &urn }
}

// ByArtifact matches nodes carrying this artifact id.
func ByArtifact(artifactID string) FindOption {
	return func(f *findFilter) { f.artifactID = &artifactID }
}

// ByMode matches nodes attached in this direction.
func ByMode(mode Mode) FindOption {
	return func(f *findFilter) { f.mode = &mode }
}

// ByParentArtifactPath matches nodes with a parent at this artifact path.
func ByParentArtifactPath(path string) FindOption {
	return func(f *findFilter) { f.parentArtifactPath = &path }
}

// FindNodes returns live nodes matching every given option, in insertion order.
func (g *Graph) FindNodes(opts ...FindOption) []Node {
	var f findFilter
	for _, opt := range opts {
		opt(&f)
	}

	var found []Node
	for i, n := range g.nodes {
		if !g.alive[i] {
			continue
		}
		if f.kindPath != nil && n.KindURN() != *f.kindPath {
			continue
		}
		if f.artifactID != nil && n.ArtifactID != *f.artifactID {
			continue
		}
		if f.mode != nil && n.Mode != *f.mode {
			continue
		}
		if f.parentArtifactPath != nil && !g.hasParentAt(n, *f.parentArtifactPath) {
			continue
		}
		found = append(found, n)
	}
	return found
}

func (g *Graph) hasParentAt(n Node, path string) bool {
	for _, p := range g.Parents(n) {
		if p.ArtifactPath() == path {
			return true
		}
	}
	return false
}

// FindNodesByPathExpr resolves a path expression.
//
// Without a context the expression is absolute. With a context, each leading
// "." climbs one ancestor level from it; climbing past the root yields no
// nodes. An expression that is only dots resolves to the climbed node itself.
// Otherwise the remainder is appended to the climbed node's artifact path and
// matched, anchored, against every node's kind path. "*" matches exactly one
// segment, "**" one or more.
func (g *Graph) FindNodesByPathExpr(expr string, context *Node) ([]Node, error) {
	climb := len(expr) - len(strings.TrimLeft(expr, PathSeparator))
	remainder := expr[climb:]

	base := g.Root()
	if context != nil {
		base = *context
	}
	if !g.HasNode(base) {
		return nil, nil
	}
	for i := 0; i < climb; i++ {
		parent, ok := g.Parent(base)
		if !ok {
			g.logger.Debugw("Path expression climbs past the root",
				logger.FieldExpr, expr,
				logger.FieldContextPath, contextPath(context),
			)
			return nil, nil
		}
		base = parent
	}

	if remainder == "" {
		return []Node{base}, nil
	}

	re, err := compilePathExpr(base.ArtifactPath(), remainder)
	if err != nil {
		return nil, errors.Wrapf(err, "expression %q", expr)
	}

	var found []Node
	for i, n := range g.nodes {
		if g.alive[i] && re.MatchString(n.KindURN()) {
			found = append(found, n)
		}
	}
	return found, nil
}

// compilePathExpr builds the anchored pattern for prefix + "." + glob.
func compilePathExpr(prefix, glob string) (*regexp.Regexp, error) {
	segments := strings.Split(glob, PathSeparator)
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "":
			return nil, errors.Wrap(errors.ErrInvalidPathExpr, "empty path segment")
		case "*":
			parts = append(parts, `[^.]+`)
		case "**":
			parts = append(parts, `[^.]+(?:\.[^.]+)*`)
		default:
			parts = append(parts, regexp.QuoteMeta(seg))
		}
	}

	pattern := strings.Join(parts, `\.`)
	if prefix != "" {
		pattern = regexp.QuoteMeta(prefix) + `\.` + pattern
	}
	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidPathExpr, err.Error())
	}
	return re, nil
}

func contextPath(n *Node) string {
	if n == nil {
		return ""
	}
	return n.ArtifactPath()
}
