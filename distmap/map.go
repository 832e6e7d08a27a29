// Package distmap implements the distributed map: a sparse grid of cells,
// each cell holding a small map from ancestor-id to a binary occupancy bit.
// Map lookup walks a particle's ancestry chain; updates install only at the
// requesting node under a first-writer-wins rule. spec.md §3/§4.G.
//
// NodeID lives here rather than in package ancestry so the two packages
// don't form an import cycle: distmap only needs an opaque ordered id and a
// caller-supplied way to walk from a node to its parent (ParentLookup),
// never the ancestry tree itself.
package distmap

import "github.com/itohio/dpslam/pose"

// NodeID identifies the ancestry node that wrote a cell entry.
type NodeID int64

// Bit is the occupancy state of a cell as recorded by one ancestry node.
// Missing entries (outer or inner) mean "unknown", which callers of Lookup
// see folded into Free.
type Bit bool

const (
	Free     Bit = false
	Occupied Bit = true
)

// ParentLookup walks one step up an ancestry chain. ok is false once the
// walk runs off the root.
type ParentLookup func(NodeID) (parent NodeID, ok bool)

// entry is one (id, bit) pair in a cell's small associative list. Cells
// carry 1-2 live ids in steady state after trimming, so a short slice
// outperforms a nested map (spec.md §9's SmallMap suggestion).
type entry struct {
	id NodeID
	v  Bit
}

type row []entry

func (r row) indexOf(id NodeID) int {
	for i := range r {
		if r[i].id == id {
			return i
		}
	}
	return -1
}

// Map is the distributed occupancy map.
type Map struct {
	cells map[pose.Cell]row
}

// New creates an empty distributed map.
func New() *Map {
	return &Map{cells: make(map[pose.Cell]row)}
}

// LookupByID returns the value a specific node recorded at a cell, if any.
func (m *Map) LookupByID(c pose.Cell, id NodeID) (Bit, bool) {
	r, ok := m.cells[c]
	if !ok {
		return Free, false
	}
	i := r.indexOf(id)
	if i < 0 {
		return Free, false
	}
	return r[i].v, true
}

// UpdateByID installs or overwrites the value a node records at a cell,
// creating the outer row and inner entry on demand.
func (m *Map) UpdateByID(v Bit, c pose.Cell, id NodeID) {
	r, ok := m.cells[c]
	if !ok {
		m.cells[c] = row{{id: id, v: v}}
		return
	}
	if i := r.indexOf(id); i >= 0 {
		r[i].v = v
		return
	}
	m.cells[c] = append(r, entry{id: id, v: v})
}

// Erase removes a node's entry at a cell, if present.
func (m *Map) Erase(c pose.Cell, id NodeID) {
	r, ok := m.cells[c]
	if !ok {
		return
	}
	i := r.indexOf(id)
	if i < 0 {
		return
	}
	r = append(r[:i], r[i+1:]...)
	if len(r) == 0 {
		delete(m.cells, c)
		return
	}
	m.cells[c] = r
}

// Rename re-keys a node's entry at a cell from old to new, if present.
func (m *Map) Rename(c pose.Cell, old, new NodeID) {
	r, ok := m.cells[c]
	if !ok {
		return
	}
	i := r.indexOf(old)
	if i < 0 {
		return
	}
	r[i].id = new
}

// Lookup walks node -> node.parent -> ... until an ancestor with a defined
// value at c is found, returning it. If the root is reached with no hit,
// the cell is reported Free (unknown is treated as free for ray-termination
// purposes, per spec.md §3).
func (m *Map) Lookup(c pose.Cell, id NodeID, parentOf ParentLookup) Bit {
	current := id
	for {
		if v, ok := m.LookupByID(c, current); ok {
			return v
		}
		next, ok := parentOf(current)
		if !ok {
			return Free
		}
		current = next
	}
}

// Update installs v at c under id, but only if no ancestor (including id
// itself) already has a value there: first-writer-wins. Returns true if the
// write happened, false if an ancestor already recorded a value at c — the
// caller (the DP-SLAM driver) uses this to decide whether to record the
// cell in the writing node's modified-cells list.
func (m *Map) Update(v Bit, c pose.Cell, id NodeID, parentOf ParentLookup) bool {
	current := id
	for {
		if _, ok := m.LookupByID(c, current); ok {
			return false
		}
		next, ok := parentOf(current)
		if !ok {
			break
		}
		current = next
	}
	m.UpdateByID(v, c, id)
	return true
}
