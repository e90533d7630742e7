package radial

import "fmt"

// Embedding is the fixed radial encoding of edge lengths: a Bessel basis
// times an envelope. It has no learnable parameters.
type Embedding struct {
	basis    *Bessel
	envelope Envelope
	rMax     float64
}

// NewEmbedding creates an embedding with numBasis Bessel functions and a
// polynomial envelope of order p.
func NewEmbedding(numBasis, p int, rMax float64) (*Embedding, error) {
	basis, err := NewBessel(numBasis, rMax)
	if err != nil {
		return nil, err
	}
	env, err := NewPolynomialCutoff(p, rMax)
	if err != nil {
		return nil, err
	}
	return NewEmbeddingWithEnvelope(basis, env), nil
}

// NewEmbeddingWithEnvelope combines a basis with any envelope.
func NewEmbeddingWithEnvelope(basis *Bessel, env Envelope) *Embedding {
	return &Embedding{basis: basis, envelope: env, rMax: basis.rMax}
}

// Len returns the feature size per edge.
func (e *Embedding) Len() int {
	return e.basis.Len()
}

// Compute writes the features of an edge of length r into out. Lengths at
// or beyond the cutoff produce exact zeros.
func (e *Embedding) Compute(r float64, out []float64) {
	if len(out) != e.Len() {
		panic(fmt.Sprintf("radial.Embedding.Compute: output length %d, want %d", len(out), e.Len()))
	}
	if r >= e.rMax {
		clear(out)
		return
	}
	e.basis.Compute(r, out)
	f := e.envelope.Value(r)
	for i := range out {
		out[i] *= f
	}
}
