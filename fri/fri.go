// Package fri implements the inner FRI (Fast Reed-Solomon IOP) round loop:
// the prover repeatedly folds an evaluation vector in half under random
// challenges, committing to each round, until it reaches a constant; the
// verifier spot-checks the folding chain at randomly sampled indices.
//
// The package is deliberately agnostic of how its input vectors were built.
// The polynomial commitment scheme layered on top supplies the folding rule,
// the input vectors, and the two input-opening callbacks.
package fri

import (
	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/matrix"
	"github.com/crate-crypto/go-fri/merkle"
)

// Parameters fixes the shape of the protocol. Prover and verifier must agree
// on all fields.
type Parameters struct {
	// LogBlowup is the log2 of the redundancy of every input vector: a
	// vector of length 2^k encodes a polynomial of degree below
	// 2^(k - LogBlowup). Folding stops once the vector has length
	// 2^LogBlowup, at which point it must be constant.
	LogBlowup int

	// NumQueries is the number of indices spot-checked by the verifier.
	NumQueries int

	// ProofOfWorkBits is the grinding difficulty applied before query
	// indices are sampled.
	ProofOfWorkBits int
}

// FoldingStrategy is the rule by which one round of FRI halves an evaluation
// vector. The two entry points must agree: folding a full vector with
// FoldMatrix and folding a single sibling pair with FoldRow produce the same
// value at the same position.
type FoldingStrategy interface {
	// FoldRow interpolates the degree-1 polynomial through the two sibling
	// evaluations (evals[2*index] and evals[2*index+1] of the unfolded
	// vector) and evaluates it at beta. logHeight is the log2 length of
	// the folded vector.
	FoldRow(index, logHeight int, beta extensions.E4, e0, e1 extensions.E4) extensions.E4

	// FoldMatrix folds a full vector, presented as rows of sibling pairs,
	// in one pass.
	FoldMatrix(beta extensions.E4, pairs *matrix.Dense[extensions.E4]) []extensions.E4
}

// ReducedOpening is the value, at one query index, of the combined quotient
// vector of a given height. The slice returned by a VerifierInputOpener is
// ordered by strictly decreasing LogHeight.
type ReducedOpening struct {
	LogHeight int
	Value     extensions.E4
}

// ProverInputOpener opens the input commitments at a query index, producing
// the batch openings the verifier will need to reconstruct the reduced
// openings at that index.
type ProverInputOpener func(index int) []merkle.BatchOpening[fr.Element]

// VerifierInputOpener checks the input batch openings at a query index and
// reconstructs the reduced opening value for every input height.
type VerifierInputOpener func(index int, inputProof []merkle.BatchOpening[fr.Element]) ([]ReducedOpening, error)
