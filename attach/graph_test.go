package attach

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/provgraph/types"
)

// nestedGraph builds :a(X) / :b(Y) / :c(Z) plus an unrelated :d(W).
func nestedGraph(t *testing.T) *Graph {
	t.Helper()
	return FromTransformList([]types.AttachmentTransform{
		{KindURN: ":a.X.:b.Y.:c", OutputArtifacts: []string{"Z"}},
		{KindURN: ":a", InputArtifacts: []string{"X"}},
		{KindURN: ":a.X.:b", InputArtifacts: []string{"Y"}},
		{KindURN: ":d", OutputArtifacts: []string{"W"}},
	}, zaptest.NewLogger(t).Sugar())
}

func kindPaths(nodes []Node) []string {
	paths := make([]string, 0, len(nodes))
	for _, n := range nodes {
		paths = append(paths, n.ArtifactPath())
	}
	sort.Strings(paths)
	return paths
}

func TestFromTransformListLinksParents(t *testing.T) {
	g := nestedGraph(t)

	assert.Equal(t, 5, g.Len())

	x := Node{KindPath: []string{":a"}, ArtifactID: "X", Mode: ModeInput}
	y := Node{KindPath: []string{":a", "X", ":b"}, ArtifactID: "Y", Mode: ModeInput}
	z := Node{KindPath: []string{":a", "X", ":b", "Y", ":c"}, ArtifactID: "Z", Mode: ModeOutput}

	parent, ok := g.Parent(z)
	require.True(t, ok)
	assert.True(t, parent.Equal(y))

	parent, ok = g.Parent(x)
	require.True(t, ok)
	assert.True(t, parent.IsRoot())

	_, ok = g.Parent(g.Root())
	assert.False(t, ok)

	assert.Equal(t, []string{":a.X", ":d.W"}, kindPaths(g.Children(g.Root())))
}

func TestOrphansAreKeptAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	g := FromTransformList([]types.AttachmentTransform{
		{KindURN: ":a.MISSING.:b", OutputArtifacts: []string{"Q"}},
	}, zap.New(core).Sugar())

	orphan := Node{KindPath: []string{":a", "MISSING", ":b"}, ArtifactID: "Q", Mode: ModeOutput}
	assert.True(t, g.HasNode(orphan))
	_, ok := g.Parent(orphan)
	assert.False(t, ok)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Orphaned attachment node", entry.Message)
	assert.Equal(t, ":a.MISSING.:b", entry.ContextMap()["kind_path"])
}

func TestTransformListRoundTrip(t *testing.T) {
	original := []types.AttachmentTransform{
		{KindURN: ":tool", InputArtifacts: []string{"t1"}, OutputArtifacts: []string{}},
		{KindURN: ":inputs", InputArtifacts: []string{"a", "b"}, OutputArtifacts: []string{}},
		{KindURN: ":outputs", InputArtifacts: []string{}, OutputArtifacts: []string{"c"}},
		{KindURN: ":inputs.a.:measurements", InputArtifacts: []string{}, OutputArtifacts: []string{"m1", "m2"}},
		{KindURN: ":empty", InputArtifacts: []string{}, OutputArtifacts: []string{}, Parameters: map[string]interface{}{"k": 1}},
	}

	roundTrip := FromTransformList(original, nil).ToTransformList()

	require.Len(t, roundTrip, len(original))
	for i := 1; i < len(roundTrip); i++ {
		assert.Less(t, roundTrip[i-1].KindURN, roundTrip[i].KindURN)
	}

	byURN := make(map[string]types.AttachmentTransform)
	for _, tr := range roundTrip {
		byURN[tr.KindURN] = tr
	}
	for _, want := range original {
		got, ok := byURN[want.KindURN]
		require.True(t, ok, want.KindURN)
		assert.ElementsMatch(t, want.InputArtifacts, got.InputArtifacts, want.KindURN)
		assert.ElementsMatch(t, want.OutputArtifacts, got.OutputArtifacts, want.KindURN)
	}
	assert.Equal(t, map[string]interface{}{"k": 1}, byURN[":empty"].Parameters)

	// Discovery order is kept within a kind.
	assert.Equal(t, []string{"a", "b"}, byURN[":inputs"].InputArtifacts)
}

func TestBuildNodeIsIdempotent(t *testing.T) {
	g := New(nil)
	first := g.BuildNode([]string{":a"}, "X", ModeInput)
	second := g.BuildNode([]string{":a"}, "X", ModeInput)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.Edges(), 1)
	assert.False(t, g.AddNode(first))
}

func TestRemoveNodeAndDescendants(t *testing.T) {
	g := nestedGraph(t)
	x := Node{KindPath: []string{":a"}, ArtifactID: "X", Mode: ModeInput}

	removed := g.RemoveNodeAndDescendants(x)

	assert.Equal(t, []string{":a.X", ":a.X.:b.Y", ":a.X.:b.Y.:c.Z"}, kindPaths(removed))
	assert.Equal(t, []string{"", ":d.W"}, kindPaths(g.Nodes()))
	assert.Len(t, g.Edges(), 1)
	assert.Nil(t, g.RemoveNodeAndDescendants(x))

	urns := make([]string, 0)
	for _, tr := range g.ToTransformList() {
		urns = append(urns, tr.KindURN)
	}
	assert.Equal(t, []string{":a", ":d"}, urns)
}

func TestReplaceNode(t *testing.T) {
	g := nestedGraph(t)
	y := Node{KindPath: []string{":a", "X", ":b"}, ArtifactID: "Y", Mode: ModeInput}
	yOut := Node{KindPath: []string{":a", "X", ":b"}, ArtifactID: "Y", Mode: ModeOutput}
	z := Node{KindPath: []string{":a", "X", ":b", "Y", ":c"}, ArtifactID: "Z", Mode: ModeOutput}

	g.ReplaceNode(y, yOut)

	assert.False(t, g.HasNode(y))
	assert.True(t, g.HasNode(yOut))
	parent, ok := g.Parent(z)
	require.True(t, ok)
	assert.True(t, parent.Equal(yOut))
	grand, ok := g.Parent(yOut)
	require.True(t, ok)
	assert.Equal(t, ":a.X", grand.ArtifactPath())

	t.Run("no-op when absent or equal", func(t *testing.T) {
		before := len(g.Edges())
		g.ReplaceNode(y, z)
		g.ReplaceNode(z, z)
		assert.Equal(t, before, len(g.Edges()))
		assert.True(t, g.HasNode(z))
	})
}

func TestFindNodes(t *testing.T) {
	g := FromTransformList([]types.AttachmentTransform{
		{KindURN: ":in", InputArtifacts: []string{"a", "b"}},
		{KindURN: ":out", OutputArtifacts: []string{"a"}},
		{KindURN: ":in.a.:probe", OutputArtifacts: []string{"p"}},
	}, nil)

	assert.Len(t, g.FindNodes(ByArtifact("a")), 2)
	assert.Len(t, g.FindNodes(ByArtifact("a"), ByMode(ModeOutput)), 1)
	assert.Len(t, g.FindNodes(ByKindPath(":in")), 2)
	assert.Len(t, g.FindNodes(ByKindPath(":in"), ByArtifact("b"), ByMode(ModeInput)), 1)
	assert.Empty(t, g.FindNodes(ByKindPath(":in"), ByMode(ModeOutput)))

	probes := g.FindNodes(ByParentArtifactPath(":in.a"))
	require.Len(t, probes, 1)
	assert.Equal(t, "p", probes[0].ArtifactID)

	assert.Len(t, g.FindNodes(), 5)
	assert.Equal(t, "", g.Root().ArtifactPath())
}
