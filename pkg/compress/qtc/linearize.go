package qtc

import (
	bitmap "github.com/boljen/go-bitmap"

	"github.com/jpfielding/qtc.go/pkg/bitio"
)

// Header nibble flags.
const (
	flagInverted byte = 0x1
	flagEmpty    byte = 0x2
	flagReserved byte = 0xC
)

// Stats counts the entries of one linearized stream.
type Stats struct {
	Levels   int  `json:"levels" csv:"levels"`
	Nodes    int  `json:"nodes" csv:"nodes"`
	Inverted bool `json:"inverted" csv:"inverted"`
	Plain    int  `json:"plain" csv:"plain"`
	Fills    int  `json:"fills" csv:"fills"`
	Patterns int  `json:"patterns" csv:"patterns"`
	Runs     int  `json:"runs" csv:"runs"`
	Nibbles  int  `json:"nibbles" csv:"nibbles"`
	Size     int  `json:"size" csv:"size"`
}

type linearizer struct {
	plan  *Plan
	tree  *Tree
	w     *bitio.Writer
	known bitmap.Bitmap // nodes whose code an earlier entry already carried
	stats Stats
}

// Linearize serializes a planned tree: the header nibble, then one entry
// for every node that is non-empty and not already implied, in index order.
func Linearize(p *Plan, inverted bool) ([]byte, Stats) {
	t := p.Tree
	l := &linearizer{
		plan:  p,
		tree:  t,
		w:     bitio.NewWriter(t.Len()/8 + 1),
		known: bitmap.New(t.Len()),
		stats: Stats{Levels: t.Levels, Nodes: t.Len(), Inverted: inverted},
	}
	header := byte(0)
	if inverted {
		header |= flagInverted
	}
	if t.Code(0) == 0 {
		l.w.WriteNibble(header | flagEmpty)
		return l.finish()
	}
	l.w.WriteNibble(header)

	l.entry(0, t.Levels-1)
	for d := 0; d < t.Levels-1; d++ {
		height := t.Levels - 2 - d // of the children
		for i := LevelStart(d); i < LevelStart(d+1); i++ {
			code := t.Code(i)
			if code == 0 || l.plan.full.Get(i) {
				continue
			}
			c0 := firstChild(i)
			for q := 0; q < 4; q++ {
				if code&(1<<q) != 0 && !l.known.Get(c0+q) {
					l.entry(c0+q, height)
				}
			}
		}
	}
	return l.finish()
}

func (l *linearizer) finish() ([]byte, Stats) {
	l.stats.Nibbles = l.w.Len() / 4
	out := l.w.Bytes()
	l.stats.Size = len(out)
	return out, l.stats
}

// entry writes the cheapest entry for pending node i at the given height.
func (l *linearizer) entry(i, height int) {
	if height == 0 {
		l.w.WriteNibble(l.tree.Code(i))
		l.stats.Plain++
		return
	}
	if l.plan.full.Get(i) {
		l.w.WriteNibble(0)
		l.w.WriteNibble(tagFill)
		l.stats.Fills++
		return
	}
	// runs deeper than maxRun fall through to a plain 0xF; the children
	// then carry runs one level shorter
	if k, v := l.plan.Run(i); k >= 2 && k <= maxRun {
		l.w.WriteNibble(0)
		l.w.WriteNibble(tagRun)
		if v == 0xF {
			l.w.WriteNibble(byte(k - 1))
		} else {
			l.w.WriteNibble(byte(k-1) | runExplicit)
			l.w.WriteNibble(v)
		}
		l.markRun(i, k)
		l.stats.Runs++
		return
	}
	if pat, ok := l.plan.Pattern(i); ok {
		l.w.WriteNibble(0)
		l.w.WriteNibble(pat.Tag)
		l.w.WriteNibble(pat.X)
		if pat.Values() == 2 {
			l.w.WriteNibble(pat.Y)
		}
		c0 := firstChild(i)
		for q := 0; q < 4; q++ {
			l.known.Set(c0+q, true)
		}
		l.stats.Patterns++
		return
	}
	l.w.WriteNibble(l.tree.Code(i))
	l.stats.Plain++
}

// markRun flags the k levels below node i as carried by its run entry.
func (l *linearizer) markRun(i, k int) {
	start, count := i, 1
	for d := 1; d <= k; d++ {
		start, count = firstChild(start), count*4
		for j := start; j < start+count; j++ {
			l.known.Set(j, true)
		}
	}
}
