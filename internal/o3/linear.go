package o3

import (
	"fmt"
	"math"

	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/tensor"
)

type linearBlock struct {
	in, out       int // block indices
	mulIn, mulOut int
	inOff, outOff int
	dim           int
	weight        *nn.Parameter // [mulIn, mulOut]
	scale         float64
}

// Linear mixes channels between blocks carrying the same irrep. It never
// combines different degrees or parities, so it commutes with rotations.
//
// Every output block receives the sum over all input blocks with its
// irrep, scaled by 1/sqrt(total input channels). Output blocks without a
// matching input are zero.
type Linear struct {
	in, out Irreps
	blocks  []linearBlock
}

// NewLinear creates a Linear map from in to out with weights from init.
func NewLinear(in, out Irreps, init *nn.Initializer) *Linear {
	l := &Linear{in: in, out: out}
	inOffs, outOffs := in.Offsets(), out.Offsets()
	for bo, mo := range out {
		fanIn := 0
		for _, mi := range in {
			if mi.Irrep == mo.Irrep {
				fanIn += mi.Mul
			}
		}
		if fanIn == 0 || mo.Mul == 0 {
			continue
		}
		for bi, mi := range in {
			if mi.Irrep != mo.Irrep || mi.Mul == 0 {
				continue
			}
			name := fmt.Sprintf("weight_%d_%d", bi, bo)
			l.blocks = append(l.blocks, linearBlock{
				in:     bi,
				out:    bo,
				mulIn:  mi.Mul,
				mulOut: mo.Mul,
				inOff:  inOffs[bi],
				outOff: outOffs[bo],
				dim:    mo.Irrep.Dim(),
				weight: nn.NewParameter(name, tensor.Shape{mi.Mul, mo.Mul}, init.Normal(mi.Mul*mo.Mul)),
				scale:  1 / math.Sqrt(float64(fanIn)),
			})
		}
	}
	return l
}

// InIrreps returns the input layout.
func (l *Linear) InIrreps() Irreps {
	return l.in
}

// OutIrreps returns the output layout.
func (l *Linear) OutIrreps() Irreps {
	return l.out
}

// Forward writes the mixed features of x into y, overwriting it.
func (l *Linear) Forward(x, y []float64) {
	if len(x) != l.in.Dim() || len(y) != l.out.Dim() {
		panic(fmt.Sprintf("o3.Linear.Forward: got lengths %d -> %d, want %d -> %d",
			len(x), len(y), l.in.Dim(), l.out.Dim()))
	}
	clear(y)
	for i := range l.blocks {
		b := &l.blocks[i]
		w := b.weight.Data()
		for u := 0; u < b.mulIn; u++ {
			xu := x[b.inOff+u*b.dim : b.inOff+(u+1)*b.dim]
			for v := 0; v < b.mulOut; v++ {
				c := w[u*b.mulOut+v] * b.scale
				if c == 0 {
					continue
				}
				yv := y[b.outOff+v*b.dim : b.outOff+(v+1)*b.dim]
				for m, xm := range xu {
					yv[m] += c * xm
				}
			}
		}
	}
}

// Parameters returns one weight matrix per connected block pair.
func (l *Linear) Parameters() []*nn.Parameter {
	params := make([]*nn.Parameter, len(l.blocks))
	for i := range l.blocks {
		params[i] = l.blocks[i].weight
	}
	return params
}
