package frame

import (
	"strconv"
	"strings"

	"github.com/teranos/provgraph/errors"
)

// StepSummary is one walked edge in a PathSummary.
type StepSummary struct {
	From        string `json:"from"`
	To          string `json:"to"`
	TowardsRoot bool   `json:"towards_root"`
}

// PathSummary is the exported form of a path: the frames it visits and the
// composed transform from the first into the last.
type PathSummary struct {
	Nodes     []string      `json:"nodes"`
	Steps     []StepSummary `json:"steps"`
	Transform Transform     `json:"transform"`
	Point     *Vec3         `json:"point,omitempty"`
	Mapped    *Vec3         `json:"mapped,omitempty"`
}

// Summary exports p. When point is non-nil it is also mapped into the last
// frame.
func (p *Path) Summary(point *Vec3) PathSummary {
	s := PathSummary{
		Nodes:     p.Nodes(),
		Steps:     make([]StepSummary, 0, len(p.steps)),
		Transform: p.Transform().Clean(1e-12),
	}
	for _, st := range p.steps {
		s.Steps = append(s.Steps, StepSummary{From: st.From, To: st.To, TowardsRoot: st.TowardsRoot()})
	}
	if point != nil {
		v := *point
		m := p.MapPoint(v)
		s.Point, s.Mapped = &v, &m
	}
	return s
}

// ParseVec3 parses "x,y,z".
func ParseVec3(text string) (Vec3, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 3 {
		return Vec3{}, errors.WithHint(
			errors.Invalidf("point %q", text),
			"give a point as x,y,z, e.g. 10,0,2.5")
	}
	var v Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Vec3{}, errors.WithHint(
				errors.Invalidf("point %q: coordinate %d", text, i),
				"coordinates are decimal numbers")
		}
		v[i] = f
	}
	return v, nil
}
