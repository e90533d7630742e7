package o3

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Irrep is an irreducible representation of O(3): degree L and parity P
// (+1 even, -1 odd).
type Irrep struct {
	L int
	P int
}

// NaturalIrrep returns the irrep of spherical harmonics of degree l, with
// parity (-1)^l.
func NaturalIrrep(l int) Irrep {
	if l%2 == 0 {
		return Irrep{L: l, P: 1}
	}
	return Irrep{L: l, P: -1}
}

// Dim returns 2L+1.
func (ir Irrep) Dim() int {
	return 2*ir.L + 1
}

// String formats the irrep as "1o" or "2e".
func (ir Irrep) String() string {
	if ir.P > 0 {
		return strconv.Itoa(ir.L) + "e"
	}
	return strconv.Itoa(ir.L) + "o"
}

// Less orders irreps by degree, even before odd.
func (ir Irrep) Less(other Irrep) bool {
	if ir.L != other.L {
		return ir.L < other.L
	}
	return ir.P > other.P
}

// ParseIrrep parses "1o" or "2e".
func ParseIrrep(s string) (Irrep, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Irrep{}, fmt.Errorf("invalid irrep %q", s)
	}
	l, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || l < 0 {
		return Irrep{}, fmt.Errorf("invalid irrep degree in %q", s)
	}
	switch s[len(s)-1] {
	case 'e':
		return Irrep{L: l, P: 1}, nil
	case 'o':
		return Irrep{L: l, P: -1}, nil
	}
	return Irrep{}, fmt.Errorf("invalid irrep parity in %q", s)
}

// Couples reports whether a ⊗ b contains out: the triangle rule
// |La-Lb| <= Lout <= La+Lb and parity Pout = Pa*Pb.
func Couples(a, b, out Irrep) bool {
	if out.P != a.P*b.P {
		return false
	}
	return triangle(a.L, b.L, out.L)
}

func triangle(l1, l2, l3 int) bool {
	d := l1 - l2
	if d < 0 {
		d = -d
	}
	return d <= l3 && l3 <= l1+l2
}

// MulIrrep is Mul copies (channels) of an irrep.
type MulIrrep struct {
	Mul int
	Irrep
}

// Dim returns Mul*(2L+1).
func (mi MulIrrep) Dim() int {
	return mi.Mul * mi.Irrep.Dim()
}

// String formats the block as "32x1o".
func (mi MulIrrep) String() string {
	return strconv.Itoa(mi.Mul) + "x" + mi.Irrep.String()
}

// Irreps describes the block layout of a feature vector.
type Irreps []MulIrrep

// ParseIrreps parses e3nn notation such as "32x0e+32x1o". A bare irrep
// has multiplicity one.
func ParseIrreps(s string) (Irreps, error) {
	var out Irreps
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mul := 1
		if i := strings.IndexByte(part, 'x'); i >= 0 {
			m, err := strconv.Atoi(part[:i])
			if err != nil || m < 0 {
				return nil, fmt.Errorf("invalid multiplicity in %q", part)
			}
			mul = m
			part = part[i+1:]
		}
		ir, err := ParseIrrep(part)
		if err != nil {
			return nil, err
		}
		out = append(out, MulIrrep{Mul: mul, Irrep: ir})
	}
	return out, nil
}

// SphericalIrreps returns mul x 0e + mul x 1o + ... up to degree lMax.
func SphericalIrreps(lMax, mul int) Irreps {
	out := make(Irreps, 0, lMax+1)
	for l := 0; l <= lMax; l++ {
		out = append(out, MulIrrep{Mul: mul, Irrep: NaturalIrrep(l)})
	}
	return out
}

// Dim returns the total feature length.
func (is Irreps) Dim() int {
	n := 0
	for _, mi := range is {
		n += mi.Dim()
	}
	return n
}

// Offsets returns the start index of every block.
func (is Irreps) Offsets() []int {
	offs := make([]int, len(is))
	off := 0
	for i, mi := range is {
		offs[i] = off
		off += mi.Dim()
	}
	return offs
}

// Contains reports whether any block carries ir.
func (is Irreps) Contains(ir Irrep) bool {
	for _, mi := range is {
		if mi.Irrep == ir && mi.Mul > 0 {
			return true
		}
	}
	return false
}

// Filter returns the blocks whose irrep satisfies keep.
func (is Irreps) Filter(keep func(Irrep) bool) Irreps {
	var out Irreps
	for _, mi := range is {
		if keep(mi.Irrep) {
			out = append(out, mi)
		}
	}
	return out
}

// Scalars returns the 0e blocks.
func (is Irreps) Scalars() Irreps {
	return is.Filter(func(ir Irrep) bool { return ir == Irrep{L: 0, P: 1} })
}

// Channels returns the multiplicity shared by every block, or false when
// multiplicities differ.
func (is Irreps) Channels() (int, bool) {
	if len(is) == 0 {
		return 0, false
	}
	c := is[0].Mul
	for _, mi := range is[1:] {
		if mi.Mul != c {
			return 0, false
		}
	}
	return c, true
}

// Irreps returns the irreps of the blocks without multiplicities.
func (is Irreps) Irreps() []Irrep {
	out := make([]Irrep, len(is))
	for i, mi := range is {
		out[i] = mi.Irrep
	}
	return out
}

// MaxL returns the highest degree present, or -1 when empty.
func (is Irreps) MaxL() int {
	l := -1
	for _, mi := range is {
		l = max(l, mi.L)
	}
	return l
}

// Sorted returns the blocks ordered by irrep with equal irreps merged.
func (is Irreps) Sorted() Irreps {
	counts := make(map[Irrep]int)
	for _, mi := range is {
		counts[mi.Irrep] += mi.Mul
	}
	out := make(Irreps, 0, len(counts))
	for ir, mul := range counts {
		out = append(out, MulIrrep{Mul: mul, Irrep: ir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Irrep.Less(out[j].Irrep) })
	return out
}

// String formats the irreps as "32x0e+32x1o".
func (is Irreps) String() string {
	parts := make([]string, len(is))
	for i, mi := range is {
		parts[i] = mi.String()
	}
	return strings.Join(parts, "+")
}
