package ancestry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/dpslam/distmap"
	"github.com/itohio/dpslam/pose"
)

func TestNewTree_RootIsLeaf(t *testing.T) {
	tr := NewTree()
	root := tr.Root()

	assert.True(t, tr.IsLeaf(root))
	assert.EqualValues(t, 0, tr.Children(root))
	_, ok := tr.ParentOf(root)
	assert.False(t, ok)
}

func TestAdd_ClearsParentLeafAndIncrementsChildren(t *testing.T) {
	tr := NewTree()
	root := tr.Root()

	a := tr.Add(root, pose.Pose{X: 1})

	assert.False(t, tr.IsLeaf(root))
	assert.EqualValues(t, 1, tr.Children(root))
	assert.True(t, tr.IsLeaf(a))

	parent, ok := tr.ParentOf(a)
	assert.True(t, ok)
	assert.Equal(t, root, parent)
}

func TestTrim_RootIsNeverPruned(t *testing.T) {
	tr := NewTree()
	m := distmap.New()

	got := tr.Trim(tr.Root(), m)
	assert.Equal(t, tr.Root(), got)
}

// TestTrim_DeadBranchIsPruned builds root -> X -> Y, eliminates Y's
// particle (leaf=false) and trims, which should also prune X once X
// becomes a childless non-leaf, per invariant 3.
func TestTrim_DeadBranchIsPruned(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	m := distmap.New()

	x := tr.Add(root, pose.Pose{X: 1})
	y := tr.Add(x, pose.Pose{X: 2})

	tr.SetLeaf(y, false) // y's particle was eliminated by resampling

	got := tr.Trim(y, m)
	assert.Equal(t, y, got)

	// x itself becomes a dead branch once y is pruned (not a live leaf,
	// now childless) and must be pruned too, per invariant 3.
	assert.EqualValues(t, 0, tr.Children(root))
}

func TestTrim_LiveLeafIsKeptWhenParentHasOtherChildren(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	m := distmap.New()

	a := tr.Add(root, pose.Pose{X: 1})
	b1 := tr.Add(a, pose.Pose{X: 2})
	b2 := tr.Add(a, pose.Pose{X: 3})

	got := tr.Trim(b1, m)
	assert.Equal(t, b1, got)
	assert.True(t, tr.IsLeaf(b1))

	parent, ok := tr.ParentOf(b2)
	assert.True(t, ok)
	assert.Equal(t, a, parent)
	assert.EqualValues(t, 2, tr.Children(a))
}

// TestTrim_CollapsesChain mirrors the worked chain-collapse scenario:
// root -> A -> B -> C, C the only leaf. After C.Trim, the chain folds so
// that the surviving node carries A's original id, directly under root,
// holding the union of A/B/C's modified cells.
func TestTrim_CollapsesChain(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	m := distmap.New()

	a := tr.Add(root, pose.Pose{X: 1})
	cellA := pose.Cell{X: 1, Y: 1}
	m.UpdateByID(distmap.Occupied, cellA, a)
	tr.AddCell(a, cellA)

	b := tr.Add(a, pose.Pose{X: 2})
	cellB := pose.Cell{X: 2, Y: 2}
	m.UpdateByID(distmap.Occupied, cellB, b)
	tr.AddCell(b, cellB)

	c := tr.Add(b, pose.Pose{X: 3})
	cellC := pose.Cell{X: 3, Y: 3}
	m.UpdateByID(distmap.Occupied, cellC, c)
	tr.AddCell(c, cellC)

	got := tr.Trim(c, m)

	assert.Equal(t, a, got, "the surviving node must carry A's original id")
	parent, ok := tr.ParentOf(got)
	assert.True(t, ok)
	assert.Equal(t, root, parent)
	assert.EqualValues(t, 1, tr.Children(root))

	merged := tr.ModifiedCells(got)
	assert.ElementsMatch(t, []pose.Cell{cellA, cellB, cellC}, merged)

	for _, cell := range []pose.Cell{cellA, cellB, cellC} {
		v := m.Lookup(cell, got, tr.ParentOf)
		assert.Equal(t, distmap.Occupied, v, "lookup must still resolve post-collapse")
	}
}

func TestTrim_BranchPointIsKept(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	m := distmap.New()

	a := tr.Add(root, pose.Pose{X: 1})
	b1 := tr.Add(a, pose.Pose{X: 2})
	b2 := tr.Add(a, pose.Pose{X: 3})

	tr.Trim(b1, m)
	tr.Trim(b2, m)

	parent, ok := tr.ParentOf(b1)
	assert.True(t, ok)
	assert.Equal(t, a, parent)
	assert.EqualValues(t, 2, tr.Children(a))
}

func TestTrim_IsIdempotent(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	m := distmap.New()

	a := tr.Add(root, pose.Pose{X: 1})
	b := tr.Add(a, pose.Pose{X: 2})

	first := tr.Trim(b, m)
	second := tr.Trim(first, m)

	assert.Equal(t, first, second)
}

func TestTrim_StaleFoldedIDIsSafeDeadSlot(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	m := distmap.New()

	a := tr.Add(root, pose.Pose{X: 1})
	b := tr.Add(a, pose.Pose{X: 2})
	c := tr.Add(b, pose.Pose{X: 3})

	first := tr.Trim(c, m)
	// c's original id is now a dead slot; trimming it again must not
	// panic or resurrect anything, even though it can't recover the live
	// successor id (callers must use the id Trim returned, not c).
	assert.NotPanics(t, func() { tr.Trim(c, m) })
	assert.NotEqual(t, first, c)
}
