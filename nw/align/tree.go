// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package align

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrTooManyAlignments means the alignments would not fit in memory addressable by an int.
var ErrTooManyAlignments = errors.New("align: too many alignments, please use a smaller bound")

// Budget is the number of alignments a tree can still hold.
// It belongs to the goroutine building the tree.
type Budget struct {
	remaining int
}

// NewBudget returns a budget of bound alignments, a negative bound means no limit.
func NewBudget(bound int) *Budget {
	if bound < 0 {
		bound = math.MaxInt
	}
	return &Budget{remaining: bound}
}

// Remaining returns the number of alignments that can still be added.
func (b *Budget) Remaining() int { return b.remaining }

const noNode int32 = -1

// node is a step of a traceback. Children are indexed like directions:
// top, left and topleft. The parent link is only used to walk from a leaf
// to the root.
type node struct {
	up, down [3]byte
	child    [3]int32
	parent   int32
	slot     int8 // index of the node in the children of its parent
}

func (n *node) isLeaf() bool {
	return n.child[0] == noNode && n.child[1] == noNode && n.child[2] == noNode
}

// Tree contains all the tracebacks from the last cell to the first one.
// Every path from the root to a leaf is an optimal alignment.
// Nodes are stored in depth-first order, so a parent always comes before its children.
type Tree struct {
	nodes []node
}

type frame struct {
	x, y   int
	parent int32
	slot   int8
}

type stack struct {
	list []frame
}

func (s *stack) push(f frame) {
	s.list = append(s.list, f)
}

func (s *stack) pop() (frame, bool) {
	if len(s.list) == 0 {
		return frame{}, false
	}
	f := s.list[len(s.list)-1]
	s.list = s.list[:len(s.list)-1]
	return f, true
}

// BuildTree builds the tree of tracebacks of r, depth first, top before left
// before topleft. The budget is decreased for every leaf, i.e., every time the
// first cell is reached, and no more nodes are added once it is exhausted.
func BuildTree(r *Result, budget *Budget) (*Tree, error) {
	t := &Tree{nodes: make([]node, 0, len(r.A)+len(r.B)+1)}

	var s stack
	s.push(frame{x: len(r.A), y: len(r.B), parent: noNode})

	var f frame
	var ok bool
	var id int32
	var n *node
	var m Move
	for {
		if f, ok = s.pop(); !ok {
			break
		}
		if f.x < 0 || f.y < 0 || budget.remaining == 0 {
			continue
		}

		if len(t.nodes) == math.MaxInt32 {
			return nil, ErrTooManyAlignments
		}
		id = t.add(f.parent, f.slot)

		if f.x == 0 && f.y == 0 {
			budget.remaining--
			continue
		}

		m = r.Move(f.x, f.y)
		n = &t.nodes[id]
		if m.Has(MoveTop) && f.y > 0 {
			n.up[0], n.down[0] = '-', r.B[f.y-1]
		}
		if m.Has(MoveLeft) && f.x > 0 {
			n.up[1], n.down[1] = r.A[f.x-1], '-'
		}
		if m.Has(MoveTopLeft) && f.x > 0 && f.y > 0 {
			n.up[2], n.down[2] = r.A[f.x-1], r.B[f.y-1]
		}

		// pushed in reverse order, the top child is explored first
		if m.Has(MoveTopLeft) {
			s.push(frame{x: f.x - 1, y: f.y - 1, parent: id, slot: 2})
		}
		if m.Has(MoveLeft) {
			s.push(frame{x: f.x - 1, y: f.y, parent: id, slot: 1})
		}
		if m.Has(MoveTop) {
			s.push(frame{x: f.x, y: f.y - 1, parent: id, slot: 0})
		}
	}

	return t, nil
}

func (t *Tree) add(parent int32, slot int8) int32 {
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		child:  [3]int32{noNode, noNode, noNode},
		parent: parent,
		slot:   slot,
	})
	if parent != noNode {
		t.nodes[parent].child[slot] = id
	}
	return id
}

// Nodes returns the number of nodes.
func (t *Tree) Nodes() int { return len(t.nodes) }

// Depth returns the number of nodes of the longest path from the root to a leaf.
func (t *Tree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	depths := make([]int32, len(t.nodes))
	var depth int32
	for i := range t.nodes {
		if p := t.nodes[i].parent; p != noNode {
			depths[i] = depths[p] + 1
		} else {
			depths[i] = 1
		}
		if depths[i] > depth {
			depth = depths[i]
		}
	}
	return int(depth)
}

// Leaves returns the leaves in depth-first order.
func (t *Tree) Leaves() []int32 {
	leaves := make([]int32, 0, 8)
	for i := range t.nodes {
		if t.nodes[i].isLeaf() {
			leaves = append(leaves, int32(i))
		}
	}
	return leaves
}

// Alignments returns the alignment of every leaf, in depth-first order.
func (t *Tree) Alignments() ([]*Alignment, error) {
	if len(t.nodes) == 0 {
		return nil, nil
	}

	leaves := t.Leaves()
	// the longest alignment has one pair per node except the leaf
	size := t.Depth() - 1
	if size > 0 && len(leaves) > math.MaxInt/(2*size) {
		return nil, ErrTooManyAlignments
	}

	alns := make([]*Alignment, len(leaves))
	for i, leaf := range leaves {
		alns[i] = t.alignment(leaf, size)
	}
	return alns, nil
}

// alignment walks from a leaf to the root. The leaf is the first cell,
// so pairs come in the order of the sequences.
func (t *Tree) alignment(leaf int32, size int) *Alignment {
	buf := make([]byte, 2*size)

	var off int
	var p *node
	id := leaf
	for t.nodes[id].parent != noNode {
		p = &t.nodes[t.nodes[id].parent]
		slot := t.nodes[id].slot
		if p.child[slot] != id {
			panic(fmt.Sprintf("align: node %d is not the child %d of its parent", id, slot))
		}
		buf[off] = p.up[slot]
		buf[size+off] = p.down[slot]
		off++
		id = t.nodes[id].parent
	}

	return &Alignment{
		Up:   buf[:off:off],
		Down: buf[size : size+off : size+off],
	}
}
