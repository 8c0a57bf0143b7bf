// Package merkle implements a multi-matrix commitment scheme (MMCS): a batch
// of matrices with power-of-two heights is hashed into a single binding
// digest, and any index can later be opened across all matrices at once with
// one sibling path.
//
// Matrices of different heights share one tree: a matrix of height 2^k has
// its rows absorbed at the tree level with 2^k nodes, so the opened row for a
// smaller matrix sits at index >> (logMaxHeight - k).
package merkle

import (
	"hash"

	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
)

// Digest is an opaque binding commitment to a batch of matrices.
type Digest [32]byte

// Dimensions describes the shape of one committed matrix. The verifier
// receives these out of band; heights determine where in the tree each row
// was absorbed.
type Dimensions struct {
	Width  int
	Height int
}

// Mmcs commits to batches of matrices over the element type T.
type Mmcs[T any] struct {
	encode  func(T) []byte
	newHash func() hash.Hash
}

// New returns an Mmcs using the given element encoding and hash function.
func New[T any](encode func(T) []byte, newHash func() hash.Hash) *Mmcs[T] {
	return &Mmcs[T]{encode: encode, newHash: newHash}
}

// ProverData is the auxiliary state retained by the committer in order to
// answer openings. It is never sent to the verifier.
type ProverData[T any] struct {
	matrices []*matrix.Dense[T]
	// layers[k] holds the digests of the level with maxHeight >> k nodes;
	// layers[0] are the leaves, the last layer is the root alone.
	layers [][]Digest
}

// BatchOpening opens one index across every matrix of a commitment: the
// opened row per matrix plus the single sibling path authenticating them.
type BatchOpening[T any] struct {
	Rows [][]T
	Path []Digest
}

// Commit hashes the batch of matrices into one digest.
//
// All heights must be powers of two. The order of the matrices is part of the
// commitment: GetMatrices and Open preserve it.
func (m *Mmcs[T]) Commit(matrices []*matrix.Dense[T]) (Digest, *ProverData[T], error) {
	if len(matrices) == 0 {
		return Digest{}, nil, ErrNoMatrices
	}

	maxHeight := 0
	for _, mat := range matrices {
		if !utils.IsPowerOfTwo(uint64(mat.Height())) {
			return Digest{}, nil, ErrHeightNotPowerOfTwo
		}
		if mat.Height() > maxHeight {
			maxHeight = mat.Height()
		}
	}
	logMaxHeight := utils.Log2Strict(uint64(maxHeight))

	layers := make([][]Digest, logMaxHeight+1)
	var prev []Digest
	for level := 0; level <= logMaxHeight; level++ {
		size := maxHeight >> level
		current := make([]Digest, size)
		for i := 0; i < size; i++ {
			var left, right *Digest
			if prev != nil {
				left, right = &prev[2*i], &prev[2*i+1]
			}
			current[i] = m.hashNode(left, right, m.rowsAbsorbedAt(matrices, size, i))
		}
		layers[level] = current
		prev = current
	}

	root := layers[logMaxHeight][0]
	return root, &ProverData[T]{matrices: matrices, layers: layers}, nil
}

// GetMatrices returns the committed matrices in commit order.
func (m *Mmcs[T]) GetMatrices(proverData *ProverData[T]) []*matrix.Dense[T] {
	return proverData.matrices
}

// Open opens the given index (relative to the tallest matrix) across all
// matrices of the commitment.
func (m *Mmcs[T]) Open(proverData *ProverData[T], index int) BatchOpening[T] {
	logMaxHeight := len(proverData.layers) - 1

	rows := make([][]T, len(proverData.matrices))
	for j, mat := range proverData.matrices {
		logHeight := utils.Log2Strict(uint64(mat.Height()))
		row := mat.Row(index >> uint(logMaxHeight-logHeight))
		rows[j] = append([]T(nil), row...)
	}

	path := make([]Digest, logMaxHeight)
	idx := index
	for level := 0; level < logMaxHeight; level++ {
		path[level] = proverData.layers[level][idx^1]
		idx >>= 1
	}

	return BatchOpening[T]{Rows: rows, Path: path}
}

// VerifyBatch checks an opening against a commitment.
//
// dims must describe the committed matrices in commit order; the heights
// determine at which tree level each opened row is absorbed, so they must
// come from a trusted source (the verifier's own claims), not from the proof.
func (m *Mmcs[T]) VerifyBatch(root Digest, dims []Dimensions, index int, opening BatchOpening[T]) error {
	if len(dims) == 0 {
		return ErrNoMatrices
	}
	if len(opening.Rows) != len(dims) {
		return ErrMismatchedBatch
	}

	maxHeight := 0
	for j, d := range dims {
		if !utils.IsPowerOfTwo(uint64(d.Height)) {
			return ErrHeightNotPowerOfTwo
		}
		if len(opening.Rows[j]) != d.Width {
			return ErrMismatchedBatch
		}
		if d.Height > maxHeight {
			maxHeight = d.Height
		}
	}
	logMaxHeight := utils.Log2Strict(uint64(maxHeight))

	if len(opening.Path) != logMaxHeight {
		return ErrInvalidProofSize
	}
	if index < 0 || index >= maxHeight {
		return ErrIndexOutOfRange
	}

	digest := m.hashNode(nil, nil, m.openedRowsAt(dims, opening.Rows, maxHeight))
	idx := index
	for level := 0; level < logMaxHeight; level++ {
		sibling := opening.Path[level]
		var left, right Digest
		if idx&1 == 0 {
			left, right = digest, sibling
		} else {
			left, right = sibling, digest
		}
		idx >>= 1

		size := maxHeight >> uint(level+1)
		digest = m.hashNode(&left, &right, m.openedRowsAt(dims, opening.Rows, size))
	}

	if digest != root {
		return ErrRootMismatch
	}
	return nil
}

// hashNode hashes the two child digests (absent for leaves) followed by the
// rows absorbed at this node.
func (m *Mmcs[T]) hashNode(left, right *Digest, rows [][]T) Digest {
	h := m.newHash()
	if left != nil {
		h.Write(left[:])
		h.Write(right[:])
	}
	for _, row := range rows {
		for i := range row {
			h.Write(m.encode(row[i]))
		}
	}

	var digest Digest
	copy(digest[:], h.Sum(nil))
	return digest
}

// rowsAbsorbedAt collects, in commit order, row `index` of every matrix whose
// height equals the level size.
func (m *Mmcs[T]) rowsAbsorbedAt(matrices []*matrix.Dense[T], size, index int) [][]T {
	var rows [][]T
	for _, mat := range matrices {
		if mat.Height() == size {
			rows = append(rows, mat.Row(index))
		}
	}
	return rows
}

// openedRowsAt is the verifier-side counterpart of rowsAbsorbedAt, selecting
// the opened rows belonging to matrices of the given height.
func (m *Mmcs[T]) openedRowsAt(dims []Dimensions, rows [][]T, size int) [][]T {
	var selected [][]T
	for j, d := range dims {
		if d.Height == size {
			selected = append(selected, rows[j])
		}
	}
	return selected
}
