// Package ancestry implements the shared-ancestry tree of map-writer nodes:
// an arena-indexed tree (not pointer-linked, grounded on the teacher's
// graph.GenericTree[N,E]) whose nodes each own a pose and a list of cells
// they wrote to the distributed map. Particles reference a node id rather
// than copying map state; Trim folds and prunes the tree as particles die
// off and converge on shared ancestors. spec.md §4.F/§4.G.
package ancestry

import (
	"github.com/itohio/dpslam/distmap"
	"github.com/itohio/dpslam/pose"
)

// NodeID identifies a node in the tree. It is the same representation
// distmap.NodeID uses, so a Tree's ids can be handed directly to a
// distmap.Map as writer/ancestor ids.
type NodeID = distmap.NodeID

// node is one arena slot. A dead node's slot is retained (never
// compacted) so an id already captured elsewhere (e.g. mid-walk in a
// distmap.Lookup) never dangles; dead slots are simply unreachable once
// folded or pruned away.
//
// leaf is not derived from children: it is the explicit "this node
// currently backs a live particle" flag, set by Add on a freshly created
// node and by the driver after resampling (survivors true, eliminated
// particles false) before Trim runs. A node can be interior (children>0)
// and still have leaf false forever — that is the ordinary state of a
// pass-through ancestor.
type node struct {
	alive bool

	p pose.Pose

	hasParent bool
	parent    NodeID
	children  uint32
	leaf      bool

	modifiedCells []pose.Cell
}

// Tree is the arena-based ancestry tree. The zero value is not usable;
// construct with NewTree.
type Tree struct {
	nodes []node
}

// NewTree creates a tree containing only the root node at the origin
// pose, with no parent and no recorded cells.
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, node{alive: true, leaf: true})
	return t
}

// Root returns the id of the tree's root node. The root is arena slot 0
// and is never pruned or folded away.
func (t *Tree) Root() NodeID {
	return 0
}

func (t *Tree) at(id NodeID) *node {
	return &t.nodes[id]
}

// Add creates a new leaf child of parent at pose p and returns its id.
// parent gains a child and loses its own leaf status.
func (t *Tree) Add(parent NodeID, p pose.Pose) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		alive:     true,
		p:         p,
		hasParent: true,
		parent:    parent,
		leaf:      true,
	})

	pn := t.at(parent)
	pn.children++
	pn.leaf = false

	return id
}

// SetLeaf sets id's leaf flag. The driver calls this on every distinct
// pre-resample id once resampling is decided: true for ids backing a
// surviving particle, false for ids whose particle was eliminated —
// before calling Trim on that same id.
func (t *Tree) SetLeaf(id NodeID, leaf bool) {
	t.at(id).leaf = leaf
}

// Pose returns the pose stored at id.
func (t *Tree) Pose(id NodeID) pose.Pose {
	return t.at(id).p
}

// IsLeaf reports id's current leaf flag.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.at(id).leaf
}

// Children returns id's tree child count.
func (t *Tree) Children(id NodeID) uint32 {
	return t.at(id).children
}

// AddCell records that id wrote to cell c. Callers append only after a
// winning distmap.Map.Update call, so a node's ModifiedCells is exactly
// the set of cells it is the first writer for.
func (t *Tree) AddCell(id NodeID, c pose.Cell) {
	n := t.at(id)
	n.modifiedCells = append(n.modifiedCells, c)
}

// ModifiedCells returns the cells id is the first writer for.
func (t *Tree) ModifiedCells(id NodeID) []pose.Cell {
	return t.at(id).modifiedCells
}

// ParentOf implements distmap.ParentLookup over this tree: it walks one
// step toward the root, returning ok=false once id is the root.
func (t *Tree) ParentOf(id NodeID) (NodeID, bool) {
	n := t.at(id)
	if !n.hasParent {
		return 0, false
	}
	return n.parent, true
}

// release marks id's slot dead and clears its bookkeeping. Its arena
// index is never reused.
func (t *Tree) release(id NodeID) {
	n := t.at(id)
	*n = node{alive: false}
}

// reparentChildren repoints every live node whose parent is old onto new,
// used when a node's identity moves to a different arena slot (Trim case
// 3) and any children it had must follow it.
func (t *Tree) reparentChildren(old, new NodeID) {
	for i := range t.nodes {
		cn := &t.nodes[i]
		if cn.alive && cn.hasParent && cn.parent == old {
			cn.parent = new
		}
	}
}

// Trim applies the tree's cleanup protocol at id, pruning dead branches
// and folding redundant single-child chains toward the root. Call it on
// every distinct id that existed before a resampling step, after SetLeaf
// has been applied to that same set of ids (spec.md §4.G/§4.H).
//
// Trim returns the id that now represents the same node it was called
// with: unchanged in every case except the fold (case 3), where the
// node's live data — pose, children, leaf flag, and the union of
// modified cells — is relocated into the arena slot that used to be its
// parent, and id's own slot is released. A caller tracking a particle's
// backing id must adopt Trim's return value.
//
// Four cases, evaluated at id:
//
//  1. id is the root: stop, nothing is ever pruned or folded at the root.
//  2. id is not a leaf and has no children (a dead branch, left behind
//     once its own last child was pruned or it was never a live leaf to
//     begin with): erase id's cells from the map, decrement its parent's
//     child count, release id's slot, and recurse Trim upward at the
//     parent for its own consequences. The recursion's return value is
//     not the identity of anything tracked (id is gone), so it is
//     discarded; Trim itself returns the now-dead id.
//  3. id's parent has exactly one child (id itself) and is not the root:
//     id is an only child of a redundant pass-through ancestor. id's
//     cells are renamed in the map from id to the parent's id, merged
//     with the parent's own modified cells, and the combined node (pose,
//     children, leaf flag, merged cells) is written into the parent's
//     arena slot, reparented to the grandparent; id's own slot is
//     released, and any children id had are repointed onto the parent's
//     slot. Trim then continues at the parent's id, and that recursive
//     call's return value is what this call returns.
//  4. Otherwise (id is a genuine branch point, a leaf with siblings, or
//     its parent has other children): id is kept as-is. Trim still
//     recurses upward at id's parent for the parent's own consequences
//     (a fold may have just become possible there), discarding that
//     recursion's return value, and returns id unchanged.
func (t *Tree) Trim(id NodeID, m *distmap.Map) NodeID {
	n := t.at(id)
	if !n.alive || !n.hasParent {
		return id // case 1: dead slot or the root itself
	}

	if !n.leaf && n.children == 0 {
		// Case 2.
		for _, c := range n.modifiedCells {
			m.Erase(c, id)
		}
		parent := n.parent
		pn := t.at(parent)
		pn.children--
		t.release(id)

		t.Trim(parent, m) // side effect only, discard result
		return id
	}

	parent := n.parent
	pn := t.at(parent)
	if pn.children == 1 && pn.hasParent {
		// Case 3.
		for _, c := range n.modifiedCells {
			m.Rename(c, id, parent)
		}
		merged := make([]pose.Cell, 0, len(pn.modifiedCells)+len(n.modifiedCells))
		merged = append(merged, pn.modifiedCells...)
		merged = append(merged, n.modifiedCells...)

		grandparent := pn.parent
		grandHasParent := pn.hasParent
		newChildren := n.children
		newLeaf := n.leaf
		newPose := n.p

		t.reparentChildren(id, parent)
		t.release(id)

		*pn = node{
			alive:         true,
			p:             newPose,
			hasParent:     grandHasParent,
			parent:        grandparent,
			children:      newChildren,
			leaf:          newLeaf,
			modifiedCells: merged,
		}

		return t.Trim(parent, m)
	}

	// Case 4.
	t.Trim(parent, m) // side effect only, discard result
	return id
}
