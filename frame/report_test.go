package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/provgraph/errors"
)

func TestPathSummary(t *testing.T) {
	p, err := newBuilder(t).BuildPath(context.Background(), "F1", "P")
	require.NoError(t, err)
	require.NotNil(t, p)

	s := p.Summary(nil)
	assert.Equal(t, []string{"F1", "P"}, s.Nodes)
	assert.Equal(t, []StepSummary{{From: "F1", To: "P", TowardsRoot: true}}, s.Steps)
	assert.Equal(t, 1000.0, s.Transform[0][3])
	assert.Nil(t, s.Mapped)

	pt := Vec3{1, 2, 3}
	s = p.Summary(&pt)
	require.NotNil(t, s.Mapped)
	assertVec(t, Vec3{1001, 1052, 63}, *s.Mapped)
	assert.Equal(t, pt, *s.Point)
}

func TestParseVec3(t *testing.T) {
	v, err := ParseVec3(" 1, -2.5 ,3e2")
	require.NoError(t, err)
	assert.Equal(t, Vec3{1, -2.5, 300}, v)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "1,x,3"} {
		_, err := ParseVec3(bad)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "%q", bad)
	}
}
