package fri

import (
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/fiatshamir"
	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
	"github.com/crate-crypto/go-fri/merkle"
)

// commitPhaseResult is the prover state carried from the commit phase into
// the query phase.
type commitPhaseResult struct {
	commits    []merkle.Digest
	proverData []*merkle.ProverData[extensions.E4]
	finalPoly  extensions.E4
}

// Prove runs the FRI protocol over a batch of evaluation vectors.
//
// The inputs must be ordered by strictly decreasing power-of-two length, each
// at least 2^LogBlowup. The largest vector is folded in half each round; a
// smaller input is added in as soon as the folded vector reaches its length.
// Each round commits to the vector about to be folded, arranged as sibling
// pairs, so that a single opened row exposes both entries a fold consumed.
func Prove(
	folding FoldingStrategy,
	params Parameters,
	challengeMmcs *merkle.Mmcs[extensions.E4],
	inputs [][]extensions.E4,
	transcript *fiatshamir.Transcript,
	openInput ProverInputOpener,
) (*Proof, error) {
	if err := validateInputShape(params, inputs); err != nil {
		return nil, err
	}

	commitPhase, err := runCommitPhase(folding, params, challengeMmcs, inputs, transcript)
	if err != nil {
		return nil, err
	}

	transcript.ObserveExtElement(commitPhase.finalPoly)
	powWitness := transcript.Grind(params.ProofOfWorkBits)

	logMaxHeight := utils.Log2Strict(uint64(len(inputs[0])))
	queryProofs := make([]QueryProof, params.NumQueries)
	for q := range queryProofs {
		index := transcript.SampleBits(logMaxHeight)
		queryProofs[q] = QueryProof{
			InputProof:          openInput(index),
			CommitPhaseOpenings: answerQuery(challengeMmcs, commitPhase.proverData, index),
		}
	}

	return &Proof{
		CommitPhaseCommits: commitPhase.commits,
		QueryProofs:        queryProofs,
		FinalPoly:          commitPhase.finalPoly,
		PowWitness:         powWitness,
	}, nil
}

func validateInputShape(params Parameters, inputs [][]extensions.E4) error {
	if len(inputs) == 0 {
		return ErrInvalidInputShape
	}
	prev := -1
	for _, input := range inputs {
		if !utils.IsPowerOfTwo(uint64(len(input))) || len(input) < 1<<params.LogBlowup {
			return ErrInvalidInputShape
		}
		if prev != -1 && len(input) >= prev {
			return ErrInvalidInputShape
		}
		prev = len(input)
	}
	return nil
}

// runCommitPhase folds the batch down to a constant, committing each round.
func runCommitPhase(
	folding FoldingStrategy,
	params Parameters,
	challengeMmcs *merkle.Mmcs[extensions.E4],
	inputs [][]extensions.E4,
	transcript *fiatshamir.Transcript,
) (commitPhaseResult, error) {
	folded := append([]extensions.E4(nil), inputs[0]...)
	next := 1

	var commits []merkle.Digest
	var proverData []*merkle.ProverData[extensions.E4]

	for len(folded) > 1<<params.LogBlowup {
		paired := matrix.NewDense(folded, 2)
		commit, data, err := challengeMmcs.Commit([]*matrix.Dense[extensions.E4]{paired})
		if err != nil {
			return commitPhaseResult{}, err
		}
		commits = append(commits, commit)
		proverData = append(proverData, data)

		transcript.ObserveDigest([32]byte(commit))
		beta := transcript.SampleExtElement()

		folded = folding.FoldMatrix(beta, paired)

		if next < len(inputs) && len(inputs[next]) == len(folded) {
			for i := range folded {
				folded[i].Add(&folded[i], &inputs[next][i])
			}
			next++
		}
	}

	// After the last fold the vector encodes a polynomial of degree zero
	// with 2^LogBlowup-fold redundancy, so all entries must agree.
	finalPoly := folded[0]
	for i := range folded {
		if folded[i] != finalPoly {
			return commitPhaseResult{}, ErrFinalPolyNotConstant
		}
	}

	return commitPhaseResult{commits: commits, proverData: proverData, finalPoly: finalPoly}, nil
}

// answerQuery opens every folding round at the query index. Round r folded a
// vector of pairs, so the opened index halves from round to round.
func answerQuery(
	challengeMmcs *merkle.Mmcs[extensions.E4],
	proverData []*merkle.ProverData[extensions.E4],
	index int,
) []CommitPhaseOpening {
	openings := make([]CommitPhaseOpening, len(proverData))
	idx := index
	for r, data := range proverData {
		pairIndex := idx >> 1
		openings[r] = CommitPhaseOpening{Opening: challengeMmcs.Open(data, pairIndex)}
		idx = pairIndex
	}
	return openings
}
