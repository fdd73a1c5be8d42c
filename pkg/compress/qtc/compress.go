package qtc

import (
	bitmap "github.com/boljen/go-bitmap"

	"github.com/jpfielding/qtc.go/pkg/nibble"
)

// Plan annotates a tree with the collapses the linearizer may emit.
type Plan struct {
	Tree     *Tree
	Patterns bool
	Runs     bool

	full bitmap.Bitmap // every pixel under the node is set
	runK nibble.Array  // run depth below a node, 0 for none
	runV nibble.Array  // code shared by every node at the run depth
}

// Compress scans the tree bottom-up and records fill subtrees, fill runs
// and (at emission time) sibling patterns. The tree is not modified.
func Compress(t *Tree, patterns, runs bool) *Plan {
	n := t.Len()
	p := &Plan{Tree: t, Patterns: patterns, Runs: runs, full: bitmap.New(n)}
	if runs {
		p.runK = nibble.New(n)
		p.runV = nibble.New(n)
	}
	leafStart := t.LeafStart()
	for i := n - 1; i >= leafStart; i-- {
		if t.Code(i) == 0xF {
			p.full.Set(i, true)
		}
	}
	for i := leafStart - 1; i >= 0; i-- {
		if t.Code(i) != 0xF {
			continue
		}
		c0 := firstChild(i)
		if p.full.Get(c0) && p.full.Get(c0+1) && p.full.Get(c0+2) && p.full.Get(c0+3) {
			p.full.Set(i, true)
			continue
		}
		if runs {
			p.summarize(i, c0, c0 >= leafStart)
		}
	}
	return p
}

// summarize records the run below a non-full node whose code is 0xF: either
// its children extend one shared run by a level or they share one code.
func (p *Plan) summarize(i, c0 int, leafChildren bool) {
	if !leafChildren && p.anyFull(c0) {
		return
	}
	k, v := p.runK.Get(c0), p.runV.Get(c0)
	if k > 0 {
		same := true
		for q := 1; q < 4; q++ {
			if p.runK.Get(c0+q) != k || p.runV.Get(c0+q) != v {
				same = false
				break
			}
		}
		if same && k < 0xF {
			p.runK.Set(i, k+1)
			p.runV.Set(i, v)
			return
		}
	}
	v = p.Tree.Code(c0)
	for q := 1; q < 4; q++ {
		if p.Tree.Code(c0+q) != v {
			return
		}
	}
	p.runK.Set(i, 1)
	p.runV.Set(i, v)
}

func (p *Plan) anyFull(c0 int) bool {
	return p.full.Get(c0) || p.full.Get(c0+1) || p.full.Get(c0+2) || p.full.Get(c0+3)
}

// Full reports whether every pixel under node i is set.
func (p *Plan) Full(i int) bool {
	return p.full.Get(i)
}

// Run returns the run below node i: every node above relative depth k is
// 0xF and every node at depth k has code v. k is 0 when there is none.
func (p *Plan) Run(i int) (k int, v byte) {
	if !p.Runs {
		return 0, 0
	}
	return int(p.runK.Get(i)), p.runV.Get(i)
}

// Pattern returns the sibling pattern to emit for internal node i, if any.
// Full internal children and children heading longer runs keep their own
// entries instead.
func (p *Plan) Pattern(i int) (Pattern, bool) {
	if !p.Patterns || p.Tree.IsLeaf(i) || p.full.Get(i) {
		return Pattern{}, false
	}
	c0 := firstChild(i)
	leafChildren := p.Tree.IsLeaf(c0)
	var c [4]byte
	for q := 0; q < 4; q++ {
		if !leafChildren && p.full.Get(c0+q) {
			return Pattern{}, false
		}
		if k, _ := p.Run(c0 + q); k >= 2 {
			return Pattern{}, false
		}
		c[q] = p.Tree.Code(c0 + q)
	}
	return Classify(c)
}
