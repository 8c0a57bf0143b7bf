package gofri

import (
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/domain"
	"github.com/crate-crypto/go-fri/fiatshamir"
	"github.com/crate-crypto/go-fri/fri"
	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/merkle"
)

// PointOpening claims the evaluations of every column of one matrix at one
// point: Values[c] is the claimed evaluation of column c at Point.
type PointOpening struct {
	Point  extensions.E4
	Values []extensions.E4
}

// MatrixClaim describes one committed matrix from the verifier's point of
// view: the domain its evaluations were committed over and the claimed
// openings.
type MatrixClaim struct {
	Domain   domain.Coset
	Openings []PointOpening
}

// VerifierRound pairs a commitment with the claims about its matrices, in
// commit order.
type VerifierRound struct {
	Commitment Commitment
	Matrices   []MatrixClaim
}

// Verify checks that all claimed evaluations are consistent with the
// commitments, using the FRI proof produced by Open.
//
// The transcript must be in the same state the prover's was when Open was
// called, and the claims must be traversed in the same order the prover
// opened them.
func (pcs *TwoAdicFriPCS) Verify(rounds []VerifierRound, proof *fri.Proof, transcript *fiatshamir.Transcript) error {
	// Replay the prover's observations of the claimed evaluations so both
	// sides derive the same batching challenge.
	for _, round := range rounds {
		for _, claim := range round.Matrices {
			for _, opening := range claim.Openings {
				for _, value := range opening.Values {
					transcript.ObserveExtElement(value)
				}
			}
		}
	}
	alpha := transcript.SampleExtElement()

	logGlobalMaxHeight := 0
	for _, round := range rounds {
		for _, claim := range round.Matrices {
			logHeight := claim.Domain.LogSize() + pcs.friParams.LogBlowup
			if logHeight > domain.TwoAdicity {
				return ErrDomainTooLarge
			}
			if logHeight > logGlobalMaxHeight {
				logGlobalMaxHeight = logHeight
			}
		}
	}

	openInput := func(index int, inputProof []merkle.BatchOpening[fr.Element]) ([]fri.ReducedOpening, error) {
		return pcs.reduceInputOpenings(rounds, alpha, logGlobalMaxHeight, index, inputProof)
	}

	return fri.Verify(pcs.folding, pcs.friParams, pcs.challengeMmcs, proof, transcript, openInput)
}

// reducedAccumulator mirrors the prover's per-height quotient batching at a
// single query index.
type reducedAccumulator struct {
	value   extensions.E4
	offset  extensions.E4
	present bool
}

// reduceInputOpenings authenticates the opened input rows of one query and
// rebuilds, per height, the value of the batched quotient vector at the query
// index. The traversal order and the alpha bookkeeping must match Open
// exactly, or the reconstructed values diverge from the committed FRI inputs.
func (pcs *TwoAdicFriPCS) reduceInputOpenings(
	rounds []VerifierRound,
	alpha extensions.E4,
	logGlobalMaxHeight, index int,
	inputProof []merkle.BatchOpening[fr.Element],
) ([]fri.ReducedOpening, error) {
	if len(inputProof) != len(rounds) {
		return nil, fmt.Errorf("%w: got %d batch openings for %d commitments",
			ErrClaimShapeMismatch, len(inputProof), len(rounds))
	}

	var accumulators [domain.TwoAdicity + 1]reducedAccumulator

	for r, round := range rounds {
		if len(inputProof[r].Rows) != len(round.Matrices) {
			return nil, fmt.Errorf("%w: round %d opened %d rows for %d matrices",
				ErrClaimShapeMismatch, r, len(inputProof[r].Rows), len(round.Matrices))
		}

		// Heights come from the verifier's own claims; widths may be
		// read off the opened rows, since the commitment binds them.
		dims := make([]merkle.Dimensions, len(round.Matrices))
		logBatchMax := 0
		for j, claim := range round.Matrices {
			logHeight := claim.Domain.LogSize() + pcs.friParams.LogBlowup
			dims[j] = merkle.Dimensions{Width: len(inputProof[r].Rows[j]), Height: 1 << uint(logHeight)}
			if logHeight > logBatchMax {
				logBatchMax = logHeight
			}
		}

		reducedIndex := index >> uint(logGlobalMaxHeight-logBatchMax)
		if err := pcs.inputMmcs.VerifyBatch(round.Commitment, dims, reducedIndex, inputProof[r]); err != nil {
			return nil, fmt.Errorf("round %d: %w", r, err)
		}

		for j, claim := range round.Matrices {
			logHeight := claim.Domain.LogSize() + pcs.friParams.LogBlowup
			row := inputProof[r].Rows[j]

			accumulator := &accumulators[logHeight]
			if !accumulator.present {
				accumulator.present = true
				accumulator.offset.SetOne()
			}

			// The row sits at index rowIdx of the bit-reversed LDE
			// over g*H, so the evaluation point is g * w^rev(rowIdx).
			rowIdx := reducedIndex >> uint(logBatchMax-logHeight)
			gen := domain.Generator(logHeight)
			var x fr.Element
			x.Exp(gen, big.NewInt(int64(domain.ReverseIndex(rowIdx, logHeight))))
			groupGen := domain.GroupGenerator()
			x.Mul(&x, &groupGen)

			var xExt extensions.E4
			xExt.B0.A0 = x

			alphaPowWidth := utils.ExtExp(alpha, uint64(len(row)))
			for _, opening := range claim.Openings {
				if len(opening.Values) != len(row) {
					return nil, fmt.Errorf("%w: claimed %d values for a row of width %d",
						ErrClaimShapeMismatch, len(opening.Values), len(row))
				}

				// Horner evaluation of sum_c alpha^c (y_c - row_c),
				// the numerator of the alpha-combined quotient.
				var numerator extensions.E4
				for c := len(row) - 1; c >= 0; c-- {
					numerator.Mul(&numerator, &alpha)
					var diff, rowExt extensions.E4
					rowExt.B0.A0 = row[c]
					diff.Sub(&opening.Values[c], &rowExt)
					numerator.Add(&numerator, &diff)
				}

				var quotient extensions.E4
				quotient.Sub(&opening.Point, &xExt)
				quotient.Inverse(&quotient)
				quotient.Mul(&quotient, &numerator)
				quotient.Mul(&quotient, &accumulator.offset)

				accumulator.value.Add(&accumulator.value, &quotient)
				accumulator.offset.Mul(&accumulator.offset, &alphaPowWidth)
			}
		}
	}

	var reduced []fri.ReducedOpening
	for logHeight := domain.TwoAdicity; logHeight >= 0; logHeight-- {
		if accumulators[logHeight].present {
			reduced = append(reduced, fri.ReducedOpening{LogHeight: logHeight, Value: accumulators[logHeight].value})
		}
	}
	return reduced, nil
}

