// Package graph turns atomic structures into neighbor graphs.
//
// A Structure is a list of atoms with optional periodic cell. Build finds
// every directed pair within the cutoff, including periodic images, and
// precomputes edge vectors and lengths. NewBatch packs several graphs into
// one index space with a per-node graph membership, which is how the model
// evaluates many structures in one pass.
package graph
