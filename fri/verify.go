package fri

import (
	"fmt"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/fiatshamir"
	"github.com/crate-crypto/go-fri/merkle"
)

// Verify checks a FRI proof.
//
// The transcript must be in the same state the prover's was when Prove was
// called; Verify replays the prover's observes so both sides sample the same
// betas and query indices. openInput is the verifier's side of the input
// openings: it authenticates the batch openings of one query and reconstructs
// the reduced opening per input height, ordered by decreasing height.
func Verify(
	folding FoldingStrategy,
	params Parameters,
	challengeMmcs *merkle.Mmcs[extensions.E4],
	proof *Proof,
	transcript *fiatshamir.Transcript,
	openInput VerifierInputOpener,
) error {
	betas := make([]extensions.E4, len(proof.CommitPhaseCommits))
	for r, commit := range proof.CommitPhaseCommits {
		transcript.ObserveDigest([32]byte(commit))
		betas[r] = transcript.SampleExtElement()
	}

	transcript.ObserveExtElement(proof.FinalPoly)
	if !transcript.CheckWitness(params.ProofOfWorkBits, proof.PowWitness) {
		return ErrInvalidPowWitness
	}

	if len(proof.QueryProofs) != params.NumQueries {
		return ErrQueryCountMismatch
	}

	// The claimed number of rounds fixes the height of the largest input;
	// checkQuery rejects the proof if the claims disagree. The bound keeps
	// a forged round count from overflowing the index sampler.
	logMaxHeight := params.LogBlowup + len(proof.CommitPhaseCommits)
	if logMaxHeight > 31 {
		return ErrInvalidProofShape
	}

	for q := range proof.QueryProofs {
		index := transcript.SampleBits(logMaxHeight)
		if err := checkQuery(folding, challengeMmcs, proof, betas, logMaxHeight, index, &proof.QueryProofs[q], openInput); err != nil {
			return fmt.Errorf("query %d: %w", q, err)
		}
	}

	return nil
}

// checkQuery walks the folding chain of one query index from the largest
// height down to the final polynomial.
func checkQuery(
	folding FoldingStrategy,
	challengeMmcs *merkle.Mmcs[extensions.E4],
	proof *Proof,
	betas []extensions.E4,
	logMaxHeight, index int,
	queryProof *QueryProof,
	openInput VerifierInputOpener,
) error {
	reducedOpenings, err := openInput(index, queryProof.InputProof)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInputOpening, err)
	}
	if len(reducedOpenings) == 0 || reducedOpenings[0].LogHeight != logMaxHeight {
		return ErrInvalidProofShape
	}
	if len(queryProof.CommitPhaseOpenings) != len(proof.CommitPhaseCommits) {
		return ErrInvalidProofShape
	}

	foldedEval := reducedOpenings[0].Value
	nextOpening := 1

	idx := index
	logHeight := logMaxHeight
	for r, commit := range proof.CommitPhaseCommits {
		pairIndex := idx >> 1

		opening := queryProof.CommitPhaseOpenings[r].Opening
		dims := []merkle.Dimensions{{Width: 2, Height: 1 << uint(logHeight-1)}}
		if err := challengeMmcs.VerifyBatch(commit, dims, pairIndex, opening); err != nil {
			return fmt.Errorf("%w: round %d: %w", ErrCommitPhaseOpening, r, err)
		}

		// The running evaluation must reappear in the committed pair at
		// the position the query index selects.
		row := opening.Rows[0]
		if row[idx&1] != foldedEval {
			return ErrFoldConsistency
		}

		foldedEval = folding.FoldRow(pairIndex, logHeight-1, betas[r], row[0], row[1])
		idx = pairIndex
		logHeight--

		// Inputs of this height entered the prover's running vector right
		// after this fold, so their reduced opening is added here.
		if nextOpening < len(reducedOpenings) && reducedOpenings[nextOpening].LogHeight == logHeight {
			foldedEval.Add(&foldedEval, &reducedOpenings[nextOpening].Value)
			nextOpening++
		}
	}

	if nextOpening != len(reducedOpenings) {
		return ErrInvalidProofShape
	}
	if foldedEval != proof.FinalPoly {
		return ErrFinalPolyMismatch
	}
	return nil
}
