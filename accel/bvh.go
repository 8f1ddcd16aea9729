// Package accel implements the scene's ray-intersection accelerator: a
// binary SAH-built BVH (spec §4.1) and a four-wide QBVH collapse of it
// (spec §4.2). Nodes are stored flat in a slice, following the teacher's
// flat BvhNode array convention (scene/optimized_scene.go) rather than a
// pointer tree, so traversal touches one contiguous allocation.
package accel

import (
	"sort"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// primitiveInfo caches the per-primitive bounds/centroid used while
// building, so the build doesn't re-query Bounds() inside the recursion.
type primitiveInfo struct {
	index    int
	bounds   math.Bounds3
	centroid math.Vec3
}

// node is a binary BVH node, either an interior node with two children or
// a leaf spanning [start,start+count) of the reordered primitive slice.
type node struct {
	Bounds      math.Bounds3
	left, right int32 // child node indices; -1 on leaves
	start, count int32
	axis        int32
}

func (n *node) isLeaf() bool { return n.left < 0 }

// BuildOptions configures the SAH split policy (spec §4.1 Open Question
// resolution 1: above 8 primitives the binned SAH cost is compared against
// the cost of one leaf holding the whole slice, rather than a hardcoded
// max-leaf-size cutoff).
type BuildOptions struct {
	// MaxPrimsInNode is the slice size at or below which a leaf is made
	// without evaluating any split. Defaults to 1. It does not cap leaf
	// size: a slice of more than 8 primitives becomes one leaf when the
	// binned SAH cost is not strictly below its primitive count, and a
	// slice whose centroids all coincide becomes one leaf as well.
	MaxPrimsInNode int
	NumBuckets     int
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{MaxPrimsInNode: 1, NumBuckets: 16}
}

// BVH is the scene's primary accelerator.
type BVH struct {
	nodes []node
	prims []core.Primitive
	opts  BuildOptions
}

// Build constructs a BVH over prims using top-down recursive SAH
// partitioning: at or below 8 primitives in a subtree it falls back to a
// median split (spec §4.1 "median split for <=8 prims, 16-bucket SAH
// otherwise").
func Build(prims []core.Primitive, opts BuildOptions) *BVH {
	if opts.NumBuckets == 0 {
		opts = DefaultBuildOptions()
	}
	b := &BVH{opts: opts}
	if len(prims) == 0 {
		return b
	}

	info := make([]primitiveInfo, len(prims))
	for i, p := range prims {
		bounds := p.Bounds()
		info[i] = primitiveInfo{index: i, bounds: bounds, centroid: bounds.Centroid()}
	}

	ordered := make([]core.Primitive, 0, len(prims))
	b.nodes = make([]node, 0, 2*len(prims))
	b.buildRecursive(info, prims, &ordered)
	b.prims = ordered
	return b
}

// buildRecursive partitions info[...] and appends nodes to b.nodes,
// returning the new node's index. ordered accumulates the primitive order
// each leaf will reference.
func (b *BVH) buildRecursive(info []primitiveInfo, prims []core.Primitive, ordered *[]core.Primitive) int32 {
	bounds := math.EmptyBounds3()
	for _, pi := range info {
		bounds = bounds.Merge(pi.bounds)
	}

	nodeIdx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{Bounds: bounds})

	if len(info) <= b.opts.MaxPrimsInNode {
		b.makeLeaf(nodeIdx, info, prims, ordered)
		return nodeIdx
	}

	centroidBounds := math.EmptyBounds3()
	for _, pi := range info {
		centroidBounds = centroidBounds.UnionPoint(pi.centroid)
	}
	axis := centroidBounds.MaxExtentAxis()
	if centroidBounds.Diagonal().Component(axis) == 0 {
		b.makeLeaf(nodeIdx, info, prims, ordered)
		return nodeIdx
	}

	var mid int
	if len(info) <= 8 {
		mid = len(info) / 2
		sort.Slice(info, func(i, j int) bool {
			return centroidBounds.Component(info[i].centroid, axis) < centroidBounds.Component(info[j].centroid, axis)
		})
	} else {
		var ok bool
		mid, ok = b.sahSplit(info, centroidBounds, axis, bounds)
		if !ok {
			b.makeLeaf(nodeIdx, info, prims, ordered)
			return nodeIdx
		}
	}

	left := b.buildRecursive(info[:mid], prims, ordered)
	right := b.buildRecursive(info[mid:], prims, ordered)
	b.nodes[nodeIdx].left = left
	b.nodes[nodeIdx].right = right
	b.nodes[nodeIdx].axis = int32(axis)
	return nodeIdx
}

const sahTraversalCost = 0.125

// sahSplit buckets primitives by centroid projection into opts.NumBuckets
// along axis, evaluates the surface-area heuristic cost of each of the
// NumBuckets-1 partitions, and partitions info in place at the best one.
// Returns ok=false when no split beats the cost of a leaf.
func (b *BVH) sahSplit(info []primitiveInfo, centroidBounds math.Bounds3, axis int, nodeBounds math.Bounds3) (int, bool) {
	nb := b.opts.NumBuckets
	type bucket struct {
		count  int
		bounds math.Bounds3
	}
	buckets := make([]bucket, nb)
	for i := range buckets {
		buckets[i].bounds = math.EmptyBounds3()
	}

	bucketOf := func(pi primitiveInfo) int {
		off := centroidBounds.Offset(pi.centroid)
		offAxis := centroidBounds.Component(off, axis)
		idx := int(offAxis * float32(nb))
		if idx >= nb {
			idx = nb - 1
		}
		if idx < 0 {
			idx = 0
		}
		return idx
	}

	for _, pi := range info {
		idx := bucketOf(pi)
		buckets[idx].count++
		buckets[idx].bounds = buckets[idx].bounds.Merge(pi.bounds)
	}

	cost := make([]float64, nb-1)
	for split := 0; split < nb-1; split++ {
		b0 := math.EmptyBounds3()
		b1 := math.EmptyBounds3()
		count0, count1 := 0, 0
		for i := 0; i <= split; i++ {
			b0 = b0.Merge(buckets[i].bounds)
			count0 += buckets[i].count
		}
		for i := split + 1; i < nb; i++ {
			b1 = b1.Merge(buckets[i].bounds)
			count1 += buckets[i].count
		}
		sa := nodeBounds.SurfaceArea()
		if sa == 0 {
			cost[split] = 1e30
			continue
		}
		cost[split] = sahTraversalCost + (float64(count0)*float64(b0.SurfaceArea())+float64(count1)*float64(b1.SurfaceArea()))/float64(sa)
	}

	minCost := cost[0]
	minSplit := 0
	for i := 1; i < len(cost); i++ {
		if cost[i] < minCost {
			minCost = cost[i]
			minSplit = i
		}
	}

	leafCost := float64(len(info))
	if minCost >= leafCost {
		return 0, false
	}

	mid := partitionByBucket(info, bucketOf, minSplit)
	if mid == 0 || mid == len(info) {
		return 0, false
	}
	return mid, true
}

func partitionByBucket(info []primitiveInfo, bucketOf func(primitiveInfo) int, split int) int {
	i, j := 0, len(info)-1
	for i <= j {
		for i <= j && bucketOf(info[i]) <= split {
			i++
		}
		for i <= j && bucketOf(info[j]) > split {
			j--
		}
		if i < j {
			info[i], info[j] = info[j], info[i]
			i++
			j--
		}
	}
	return i
}

func (b *BVH) makeLeaf(nodeIdx int32, info []primitiveInfo, prims []core.Primitive, ordered *[]core.Primitive) {
	start := int32(len(*ordered))
	for _, pi := range info {
		*ordered = append(*ordered, prims[pi.index])
	}
	n := &b.nodes[nodeIdx]
	n.left = -1
	n.start = start
	n.count = int32(len(info))
}

// Bounds returns the accelerator's world-space bounding box.
func (b *BVH) Bounds() math.Bounds3 {
	if len(b.nodes) == 0 {
		return math.EmptyBounds3()
	}
	return b.nodes[0].Bounds
}

// Intersect finds the closest hit, using the classic stack-based
// front-to-back traversal ordered by ray direction sign per axis.
func (b *BVH) Intersect(ray math.Ray) (*core.Interaction, bool) {
	if len(b.nodes) == 0 {
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
		n := &b.nodes[idx]
		if _, _, ok := n.Bounds.IntersectP(currentRay.Origin, invDir, negDir, currentRay.TMax); !ok {
			continue
		}
		if n.isLeaf() {
			for i := n.start; i < n.start+n.count; i++ {
				if it, ok := b.prims[i].Intersect(currentRay); ok {
					closest = it
					hit = true
					currentRay.TMax = it.T
				}
			}
			continue
		}
		if negDir[n.axis] {
			stack[sp] = n.left
			sp++
			stack[sp] = n.right
			sp++
		} else {
			stack[sp] = n.right
			sp++
			stack[sp] = n.left
			sp++
		}
	}
	return closest, hit
}

// IntersectP is the shadow-ray any-hit variant: it returns as soon as any
// occluder is found, without computing a full Interaction.
func (b *BVH) IntersectP(ray math.Ray) bool {
	if len(b.nodes) == 0 {
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
		n := &b.nodes[idx]
		if _, _, ok := n.Bounds.IntersectP(ray.Origin, invDir, negDir, ray.TMax); !ok {
			continue
		}
		if n.isLeaf() {
			for i := n.start; i < n.start+n.count; i++ {
				if b.prims[i].IntersectP(ray) {
					return true
				}
			}
			continue
		}
		stack[sp] = n.left
		sp++
		stack[sp] = n.right
		sp++
	}
	return false
}
