package fri

import "errors"

var (
	// ErrInvalidInputShape is returned by Prove when the input vectors are
	// not ordered by strictly decreasing power-of-two length, or when the
	// smallest is shorter than the blow-up.
	ErrInvalidInputShape = errors.New("fri: input vectors must have strictly decreasing power-of-two lengths, all at least the blow-up")

	// ErrFinalPolyNotConstant is returned by Prove when the fully folded
	// vector is not constant, meaning some input was not low-degree.
	ErrFinalPolyNotConstant = errors.New("fri: fully folded vector is not constant")

	// ErrInvalidPowWitness is returned by Verify when the proof-of-work
	// witness does not satisfy the grinding condition.
	ErrInvalidPowWitness = errors.New("fri: proof of work witness does not meet the required difficulty")

	// ErrQueryCountMismatch is returned by Verify when the proof carries a
	// different number of query proofs than the parameters demand.
	ErrQueryCountMismatch = errors.New("fri: number of query proofs does not match the number of queries")

	// ErrInvalidProofShape is returned by Verify when the proof structure
	// is inconsistent with the heights implied by the claims.
	ErrInvalidProofShape = errors.New("fri: proof shape does not match the claimed heights")

	// ErrInputOpening wraps failures while checking the input openings of
	// one query.
	ErrInputOpening = errors.New("fri: input opening verification failed")

	// ErrCommitPhaseOpening wraps failures while checking a commit phase
	// opening of one query.
	ErrCommitPhaseOpening = errors.New("fri: commit phase opening verification failed")

	// ErrFoldConsistency is returned by Verify when an opened commit phase
	// row does not match the running folded evaluation at a query index.
	ErrFoldConsistency = errors.New("fri: opened row is inconsistent with the folded evaluation")

	// ErrFinalPolyMismatch is returned by Verify when the folding chain of
	// a query does not terminate in the claimed final polynomial.
	ErrFinalPolyMismatch = errors.New("fri: folded evaluation does not match the final polynomial")
)
