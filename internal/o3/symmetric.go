package o3

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/tensor"
)

// SymmetricBasis holds generalized coupling tensors for the symmetric
// contraction of one channel of an atomic basis with itself.
//
// For body order nu and output irrep L, each basis tensor U[M][i1]...[i_nu]
// maps nu copies of a feature vector a (layout: the input irreps, one
// channel) to
//
//	B[M] = Σ U[M][i1..i_nu] a[i1] ... a[i_nu]
//
// which transforms as L under rotation. Tensors are symmetric under any
// permutation of i1..i_nu, linearly independent, and orthonormal.
type SymmetricBasis struct {
	in          []Irrep
	offsets     []int
	dim         int
	out         []Irrep
	correlation int
	tensors     [][][][]float64 // [out][nu-1][path]
}

type coupled struct {
	ir Irrep
	t  []float64 // [M][i1..i_nu]
}

// NewSymmetricBasis derives the tensors for body orders 1..correlation by
// coupling one more copy of the input at a time, keeping intermediate
// degrees up to lMaxMid. Each order reuses the reduced couplings of the
// previous order.
//
// Returns ErrConfiguration for a non-positive correlation, degrees beyond
// the coupling table, or an output irrep no body order can produce.
func NewSymmetricBasis(in, out []Irrep, correlation, lMaxMid int, table *CouplingTable) (*SymmetricBasis, error) {
	if correlation < 1 {
		return nil, fmt.Errorf("correlation order %d: %w", correlation, errkind.ErrConfiguration)
	}
	if lMaxMid > table.LMax() {
		return nil, fmt.Errorf("intermediate degree %d exceeds coupling table degree %d: %w",
			lMaxMid, table.LMax(), errkind.ErrConfiguration)
	}
	for _, ir := range append(append([]Irrep(nil), in...), out...) {
		if ir.L > lMaxMid {
			return nil, fmt.Errorf("irrep %s exceeds intermediate degree %d: %w", ir, lMaxMid, errkind.ErrConfiguration)
		}
	}

	b := &SymmetricBasis{
		in:          append([]Irrep(nil), in...),
		out:         append([]Irrep(nil), out...),
		correlation: correlation,
		offsets:     make([]int, len(in)),
		tensors:     make([][][][]float64, len(out)),
	}
	for i, ir := range in {
		b.offsets[i] = b.dim
		b.dim += ir.Dim()
	}
	for o := range out {
		b.tensors[o] = make([][][]float64, correlation)
	}

	level := b.firstOrder()
	for nu := 1; nu <= correlation; nu++ {
		if nu > 1 {
			level = b.couple(level, nu-1, lMaxMid, table)
		}
		for o, ir := range out {
			var sym [][]float64
			for _, p := range level {
				if p.ir == ir {
					sym = append(sym, symmetrize(p.t, ir.Dim(), b.dim, nu))
				}
			}
			b.tensors[o][nu-1] = orthonormalize(sym)
		}
	}

	for o, ir := range out {
		n := 0
		for nu := range b.tensors[o] {
			n += len(b.tensors[o][nu])
		}
		if n == 0 {
			return nil, fmt.Errorf("no symmetric coupling of %v reaches %s: %w", in, ir, errkind.ErrConfiguration)
		}
	}
	return b, nil
}

// firstOrder returns the identity couplings: each input block maps onto
// itself.
func (b *SymmetricBasis) firstOrder() []coupled {
	level := make([]coupled, len(b.in))
	for i, ir := range b.in {
		d := ir.Dim()
		t := make([]float64, d*b.dim)
		for m := 0; m < d; m++ {
			t[m*b.dim+b.offsets[i]+m] = 1
		}
		level[i] = coupled{ir: ir, t: t}
	}
	return level
}

// couple extends order-nu couplings by one more copy of the input and
// reduces each output irrep to an orthonormal basis.
func (b *SymmetricBasis) couple(level []coupled, nu, lMaxMid int, table *CouplingTable) []coupled {
	size := ipow(b.dim, nu)
	groups := make(map[Irrep][][]float64)
	for _, p := range level {
		dPrev := p.ir.Dim()
		for bi, ir := range b.in {
			dIn := ir.Dim()
			lo := p.ir.L - ir.L
			if lo < 0 {
				lo = -lo
			}
			for l := lo; l <= min(p.ir.L+ir.L, lMaxMid); l++ {
				irOut := Irrep{L: l, P: p.ir.P * ir.P}
				c := table.Get(p.ir.L, ir.L, l)
				t := make([]float64, irOut.Dim()*size*b.dim)
				for idx, cv := range c {
					if cv == 0 {
						continue
					}
					m := idx % dIn
					mp := (idx / dIn) % dPrev
					M := idx / (dIn * dPrev)
					src := p.t[mp*size : (mp+1)*size]
					for I, v := range src {
						if v != 0 {
							t[(M*size+I)*b.dim+b.offsets[bi]+m] += cv * v
						}
					}
				}
				groups[irOut] = append(groups[irOut], t)
			}
		}
	}

	keys := make([]Irrep, 0, len(groups))
	for ir := range groups {
		keys = append(keys, ir)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var next []coupled
	for _, ir := range keys {
		for _, t := range orthonormalize(groups[ir]) {
			next = append(next, coupled{ir: ir, t: t})
		}
	}
	return next
}

// symmetrize averages t over all permutations of its nu input indices.
func symmetrize(t []float64, dOut, dim, nu int) []float64 {
	shape := tensor.Repeat(dim, nu)
	size := shape.NumElements()
	perms := permutations(nu)
	out := make([]float64, len(t))
	idx, pidx := make([]int, nu), make([]int, nu)
	for I := 0; I < size; I++ {
		shape.Unravel(I, idx)
		for _, perm := range perms {
			for k, pk := range perm {
				pidx[k] = idx[pk]
			}
			J := shape.Ravel(pidx)
			for M := 0; M < dOut; M++ {
				out[M*size+I] += t[M*size+J]
			}
		}
	}
	inv := 1 / float64(len(perms))
	for i := range out {
		out[i] *= inv
	}
	return out
}

// orthonormalize returns an orthonormal basis of the span of rows, using
// the right singular vectors with non-negligible singular values.
func orthonormalize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	n := len(rows[0])
	x := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		x.SetRow(i, r)
	}
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		panic("o3: SVD failed to converge")
	}
	vals := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	var out [][]float64
	for j, s := range vals {
		if s <= 1e-8 {
			continue
		}
		col := mat.Col(nil, j, &v)
		fixSign(col)
		out = append(out, col)
	}
	return out
}

// permutations returns every permutation of 0..n-1 in lexicographic order.
func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for pos := 0; pos <= len(p); pos++ {
			q := make([]int, 0, n)
			q = append(q, p[:pos]...)
			q = append(q, n-1)
			q = append(q, p[pos:]...)
			out = append(out, q)
		}
	}
	return out
}

func ipow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}

// Dim returns the per-channel input length.
func (b *SymmetricBasis) Dim() int {
	return b.dim
}

// In returns the per-channel input irreps.
func (b *SymmetricBasis) In() []Irrep {
	return b.in
}

// Out returns the output irreps.
func (b *SymmetricBasis) Out() []Irrep {
	return b.out
}

// Correlation returns the highest body order.
func (b *SymmetricBasis) Correlation() int {
	return b.correlation
}

// NumPaths returns the number of basis tensors for output out at body
// order nu (1-based).
func (b *SymmetricBasis) NumPaths(out, nu int) int {
	return len(b.tensors[out][nu-1])
}

// Tensors returns the basis tensors for output out at body order nu
// (1-based), each laid out as [M][i1..i_nu].
func (b *SymmetricBasis) Tensors(out, nu int) [][]float64 {
	return b.tensors[out][nu-1]
}

// Evaluate computes Σ_path w[path] Σ U[M][i..] a[i1]...a[i_nu] for one
// body order directly, without the nested recurrence. It is the reference
// the contraction is tested against.
func (b *SymmetricBasis) Evaluate(out, nu int, w, a []float64) []float64 {
	d := b.out[out].Dim()
	shape := tensor.Repeat(b.dim, nu)
	size := shape.NumElements()
	idx := make([]int, nu)
	res := make([]float64, d)
	for p, u := range b.tensors[out][nu-1] {
		for I := 0; I < size; I++ {
			shape.Unravel(I, idx)
			prod := w[p]
			for _, i := range idx {
				prod *= a[i]
			}
			if prod == 0 {
				continue
			}
			for M := 0; M < d; M++ {
				res[M] += u[M*size+I] * prod
			}
		}
	}
	return res
}
