package tensor

import "fmt"

// Shape represents the dimensions of a dense row-major array.
type Shape []int

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Unravel writes the multi-index of flat offset idx into dst.
// dst must have len(s) elements.
func (s Shape) Unravel(idx int, dst []int) {
	for i := len(s) - 1; i >= 0; i-- {
		dst[i] = idx % s[i]
		idx /= s[i]
	}
}

// Ravel returns the flat row-major offset of a multi-index.
func (s Shape) Ravel(index []int) int {
	off := 0
	for i, v := range index {
		off = off*s[i] + v
	}
	return off
}

// Repeat returns a shape with dim repeated n times.
func Repeat(dim, n int) Shape {
	s := make(Shape, n)
	for i := range s {
		s[i] = dim
	}
	return s
}
