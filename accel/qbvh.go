package accel

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// qnode is a four-wide collapse of two binary BVH levels: up to 4 children,
// each either another qnode or a binary-BVH leaf range (spec §4.2).
type qnode struct {
	childBounds [4]math.Bounds3
	// children holds a qbvh node index when leafBit is clear, or the index
	// of a binary-BVH leaf node (whose start/count range into the BVH's
	// prims is read at traversal) when leafBit is set. Only the first
	// numValid slots are used; counts is the leaf's primitive count and 0
	// for interior children.
	children [4]int32
	counts   [4]int32
	numValid int32
}

const leafBit int32 = 1 << 30

// QBVH collapses a binary BVH into 4-wide nodes for fewer traversal steps
// per ray; the binary BVH's SAH split choices are preserved; only the
// traversal branching factor changes (spec §4.2).
type QBVH struct {
	bvh   *BVH
	nodes []qnode
}

// BuildQBVH collapses an already-built binary BVH two levels at a time:
// a node's two children are expanded one more level (if they are interior)
// so up to 4 grandchildren become this qnode's direct children.
func BuildQBVH(bvh *BVH) *QBVH {
	q := &QBVH{bvh: bvh}
	if len(bvh.nodes) == 0 {
		return q
	}
	q.nodes = make([]qnode, 0, len(bvh.nodes)/2+1)
	q.collapse(0)
	return q
}

// collapse builds one qnode rooted at the binary node bvhIdx and returns
// its index in q.nodes.
func (q *QBVH) collapse(bvhIdx int32) int32 {
	n := &q.bvh.nodes[bvhIdx]

	var childIdx [4]int32
	count := 0
	if n.isLeaf() {
		childIdx[0] = bvhIdx
		count = 1
	} else {
		l, r := n.left, n.right
		for _, c := range [2]int32{l, r} {
			cn := &q.bvh.nodes[c]
			if !cn.isLeaf() && count < 3 {
				childIdx[count] = cn.left
				count++
				childIdx[count] = cn.right
				count++
			} else {
				childIdx[count] = c
				count++
			}
		}
	}

	qnodeIdx := int32(len(q.nodes))
	q.nodes = append(q.nodes, qnode{})

	var out qnode
	out.numValid = int32(count)
	for i := 0; i < count; i++ {
		bn := &q.bvh.nodes[childIdx[i]]
		out.childBounds[i] = bn.Bounds
		if bn.isLeaf() {
			out.children[i] = childIdx[i] | leafBit
			out.counts[i] = bn.count
		} else {
			out.children[i] = q.collapse(childIdx[i])
			out.counts[i] = 0
		}
	}
	q.nodes[qnodeIdx] = out
	return qnodeIdx
}

// visitOrder computes, at traversal time rather than from a hardcoded
// per-node-configuration table, the near-to-far visitation order over a
// qnode's 4 child slots (spec §4.2 Open Question resolution 2: the order
// is derived from each slot's bounds, not a baked constant table indexed
// by split axis).
//
// visitOrder returns the slot visitation order for a qnode given the ray's
// negative-direction flags, derived from each slot's bounds centroid
// projected onto the dominant axis of the node's combined bounds — slots
// whose centroid lies further along the ray's negated direction are
// visited first, so front-to-back order falls out of the data rather than
// a fixed per-node split-axis table.
func (q *QBVH) visitOrder(n *qnode, negDir [3]bool) [4]int32 {
	var order [4]int32
	for i := range order {
		order[i] = int32(i)
	}
	combined := math.EmptyBounds3()
	for i := int32(0); i < n.numValid; i++ {
		combined = combined.Merge(n.childBounds[i])
	}
	axis := combined.MaxExtentAxis()

	key := func(i int32) float32 {
		c := n.childBounds[i].Centroid()
		v := combined.Component(c, axis)
		if negDir[axis] {
			return -v
		}
		return v
	}
	valid := order[:n.numValid]
	for i := 1; i < len(valid); i++ {
		for j := i; j > 0 && key(valid[j-1]) > key(valid[j]); j-- {
			valid[j-1], valid[j] = valid[j], valid[j-1]
		}
	}
	return order
}

func (q *QBVH) Bounds() math.Bounds3 { return q.bvh.Bounds() }

// Intersect traverses the 4-wide tree, testing all valid child slab boxes
// and recursing/leaf-testing in near-to-far order.
func (q *QBVH) Intersect(ray math.Ray) (*core.Interaction, bool) {
	if len(q.nodes) == 0 {
		return nil, false
	}
	invDir := ray.InvDirection()
	negDir := ray.NegDir()

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	var closest *core.Interaction
	hit := false
	currentRay := ray

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := &q.nodes[idx]
		order := q.visitOrder(n, negDir)
		var inner [4]int32
		numInner := 0
		for k := int32(0); k < n.numValid; k++ {
			i := order[k]
			if _, _, ok := n.childBounds[i].IntersectP(currentRay.Origin, invDir, negDir, currentRay.TMax); !ok {
				continue
			}
			child := n.children[i]
			if child&leafBit != 0 {
				bvhIdx := child &^ leafBit
				bn := &q.bvh.nodes[bvhIdx]
				for p := bn.start; p < bn.start+bn.count; p++ {
					if it, ok := q.bvh.prims[p].Intersect(currentRay); ok {
						closest = it
						hit = true
						currentRay.TMax = it.T
					}
				}
			} else {
				inner[numInner] = child
				numInner++
			}
		}
		// Push far-to-near so the nearest interior child is popped first.
		for k := numInner - 1; k >= 0; k-- {
			stack[sp] = inner[k]
			sp++
		}
	}
	return closest, hit
}

func (q *QBVH) IntersectP(ray math.Ray) bool {
	if len(q.nodes) == 0 {
		return false
	}
	invDir := ray.InvDirection()
	negDir := ray.NegDir()

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := &q.nodes[idx]
		for i := int32(0); i < n.numValid; i++ {
			if _, _, ok := n.childBounds[i].IntersectP(ray.Origin, invDir, negDir, ray.TMax); !ok {
				continue
			}
			child := n.children[i]
			if child&leafBit != 0 {
				bvhIdx := child &^ leafBit
				bn := &q.bvh.nodes[bvhIdx]
				for p := bn.start; p < bn.start+bn.count; p++ {
					if q.bvh.prims[p].IntersectP(ray) {
						return true
					}
				}
			} else {
				stack[sp] = child
				sp++
			}
		}
	}
	return false
}
