package qtc

// Entry tags, written after the 0000 escape nibble.
const (
	tagFill  byte = 0x0 // subtree entirely set
	tagEmpty byte = 0x1 // 0x1-0x4: child tag-1 empty, the rest X
	tagOdd   byte = 0x5 // 0x5-0x8: child tag-5 is Y, the rest X
	tagRows  byte = 0x9 // NW=NE=X, SW=SE=Y
	tagCols  byte = 0xA // NW=SW=X, NE=SE=Y
	tagDiag  byte = 0xB // NW=SE=X, NE=SW=Y
	tagSame  byte = 0xC // all four X
	tagRun   byte = 0xD // run nibble follows
)

const (
	maxRun      = 8
	runExplicit = 0x8
)

// Pattern is a sibling arrangement of four child codes.
type Pattern struct {
	Tag byte
	X   byte
	Y   byte
}

// Values is the number of child codes the pattern carries.
func (p Pattern) Values() int {
	switch {
	case p.Tag >= tagOdd && p.Tag <= tagDiag:
		return 2
	default:
		return 1
	}
}

// Classify matches four child codes against the sibling patterns, cheapest
// first. Fewer than three non-empty children never match.
func Classify(c [4]byte) (Pattern, bool) {
	zeros, zpos := 0, 0
	for q, v := range c {
		if v == 0 {
			zeros++
			zpos = q
		}
	}
	switch zeros {
	case 0:
	case 1:
		x := c[(zpos+1)&3]
		for q, v := range c {
			if q != zpos && v != x {
				return Pattern{}, false
			}
		}
		return Pattern{Tag: tagEmpty + byte(zpos), X: x}, true
	default:
		return Pattern{}, false
	}

	if c[0] == c[1] && c[1] == c[2] && c[2] == c[3] {
		return Pattern{Tag: tagSame, X: c[0]}, true
	}
	for pos := 0; pos < 4; pos++ {
		a, b, d := c[(pos+1)&3], c[(pos+2)&3], c[(pos+3)&3]
		if a == b && b == d {
			return Pattern{Tag: tagOdd + byte(pos), X: a, Y: c[pos]}, true
		}
	}
	switch {
	case c[0] == c[1] && c[2] == c[3]:
		return Pattern{Tag: tagRows, X: c[0], Y: c[2]}, true
	case c[0] == c[2] && c[1] == c[3]:
		return Pattern{Tag: tagCols, X: c[0], Y: c[1]}, true
	case c[0] == c[3] && c[1] == c[2]:
		return Pattern{Tag: tagDiag, X: c[0], Y: c[1]}, true
	}
	return Pattern{}, false
}

// Expand returns the child codes a pattern stands for and the parent code
// they imply.
func (p Pattern) Expand() (children [4]byte, parent byte) {
	x, y := p.X, p.Y
	switch {
	case p.Tag >= tagEmpty && p.Tag < tagOdd:
		children = [4]byte{x, x, x, x}
		children[p.Tag-tagEmpty] = 0
		return children, 0xF &^ (1 << (p.Tag - tagEmpty))
	case p.Tag >= tagOdd && p.Tag < tagRows:
		children = [4]byte{x, x, x, x}
		children[p.Tag-tagOdd] = y
	case p.Tag == tagRows:
		children = [4]byte{x, x, y, y}
	case p.Tag == tagCols:
		children = [4]byte{x, y, x, y}
	case p.Tag == tagDiag:
		children = [4]byte{x, y, y, x}
	case p.Tag == tagSame:
		children = [4]byte{x, x, x, x}
	}
	return children, 0xF
}

// valid reports whether decoded pattern values are consistent.
func (p Pattern) valid() bool {
	if p.Tag < tagEmpty || p.Tag > tagSame || p.X == 0 {
		return false
	}
	if p.Values() == 2 {
		return p.Y != 0 && p.Y != p.X
	}
	return true
}
