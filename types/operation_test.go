package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachedIDs(t *testing.T) {
	op := Operation{
		ID: "op1",
		Attachments: []AttachmentTransform{
			{KindURN: ":in", InputArtifacts: []string{"a", "b"}},
			{KindURN: ":out", OutputArtifacts: []string{"c", "a"}},
		},
	}

	assert.Equal(t, []string{"a", "b", "c"}, op.AttachedIDs(false))
	assert.Equal(t, []string{"c", "a"}, op.AttachedIDs(true))
}

func TestArtifactHelpers(t *testing.T) {
	var missing *Artifact
	assert.Equal(t, "", missing.ParentFrame())

	a := &Artifact{ID: "scan", Tags: []string{"raw"}, SpatialFrame: &SpatialFrame{ParentFrame: "fixture"}}
	assert.Equal(t, "fixture", a.ParentFrame())
	assert.True(t, a.HasTag("raw"))
	assert.False(t, a.HasTag("cooked"))
}
