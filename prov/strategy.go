package prov

import (
	"strconv"
	"strings"

	"github.com/teranos/provgraph/errors"
)

// Direction selects which side of a seed artifact lineage follows.
type Direction int

const (
	Ancestors Direction = iota
	Descendants
)

func (d Direction) String() string {
	if d == Descendants {
		return "descendants"
	}
	return "ancestors"
}

// Strategy is a lineage direction plus an optional radius: how many graph hops
// of side branches to pull in around every artifact on the main lineage.
type Strategy struct {
	Direction Direction
	Radius    int
}

func (s Strategy) String() string {
	if s.Radius == 0 {
		return s.Direction.String()
	}
	return s.Direction.String() + "+" + strconv.Itoa(s.Radius)
}

// ParseStrategy parses "ancestors" or "descendants", optionally suffixed with
// "+N" for a radius N >= 0.
func ParseStrategy(text string) (Strategy, error) {
	name, radiusText, hasRadius := strings.Cut(strings.TrimSpace(text), "+")

	var s Strategy
	switch name {
	case "ancestors":
		s.Direction = Ancestors
	case "descendants":
		s.Direction = Descendants
	default:
		return Strategy{}, errors.WithHint(
			errors.Wrapf(errors.ErrNoMatchingStrategy, "%q", text),
			"use ancestors or descendants, optionally with a +N radius")
	}

	if hasRadius {
		n, err := strconv.Atoi(radiusText)
		if err != nil || n < 0 {
			return Strategy{}, errors.WithHint(
				errors.Wrapf(errors.ErrNoMatchingStrategy, "%q: bad radius", text),
				"the radius is a non-negative integer, e.g. ancestors+2")
		}
		s.Radius = n
	}
	return s, nil
}
