package merkle

import "errors"

var (
	ErrNoMatrices          = errors.New("mmcs: at least one matrix is required")
	ErrHeightNotPowerOfTwo = errors.New("mmcs: matrix height is not a power of two")
	ErrMismatchedBatch     = errors.New("mmcs: opening shape does not match the claimed dimensions")
	ErrInvalidProofSize    = errors.New("mmcs: merkle path length does not match the tree depth")
	ErrIndexOutOfRange     = errors.New("mmcs: opened index is out of range")
	ErrRootMismatch        = errors.New("mmcs: recomputed root does not match the commitment")
)
