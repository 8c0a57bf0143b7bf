package gofri

import (
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"golang.org/x/sync/errgroup"

	"github.com/crate-crypto/go-fri/domain"
	"github.com/crate-crypto/go-fri/fiatshamir"
	"github.com/crate-crypto/go-fri/fri"
	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
	"github.com/crate-crypto/go-fri/merkle"
)

// Rows of an evaluation vector are processed in parallel in chunks of this
// size, amortising goroutine overhead on small matrices.
const rowChunkSize = 1 << 12

// OpeningRound selects the opening points for one commitment: Points[j]
// lists the points the j'th committed matrix is opened at.
type OpeningRound struct {
	Data   *ProverData
	Points [][]extensions.E4
}

// OpenedValues holds the claimed evaluations produced by Open, indexed by
// round, matrix, point and column.
type OpenedValues [][][][]extensions.E4

// Open evaluates every committed polynomial at the requested points and
// produces a single FRI proof that all claimed evaluations are correct.
//
// For each matrix M with columns f_c and each opening point z, correctness of
// the claimed values y_c = f_c(z) reduces to the low-degreeness of the
// quotients (y_c - f_c(x)) / (z - x). All quotients of the same height are
// collapsed into one vector using powers of a batching challenge sampled
// after the claimed values are absorbed into the transcript, and the
// resulting vectors, one per height, feed the FRI prover.
func (pcs *TwoAdicFriPCS) Open(rounds []OpeningRound, transcript *fiatshamir.Transcript) (OpenedValues, *fri.Proof, error) {
	matsPerRound := make([][]*matrix.Dense[fr.Element], len(rounds))
	globalMaxHeight, globalMaxWidth := 1, 0
	for r, round := range rounds {
		mats := pcs.inputMmcs.GetMatrices(round.Data)
		if len(mats) != len(round.Points) {
			return nil, nil, fmt.Errorf("%w: round %d has %d matrices but %d point lists",
				ErrPointCountMismatch, r, len(mats), len(round.Points))
		}
		for _, mat := range mats {
			if mat.Height() < 1<<uint(pcs.friParams.LogBlowup) {
				return nil, nil, ErrMatrixTooShort
			}
			if mat.Height() > globalMaxHeight {
				globalMaxHeight = mat.Height()
			}
			if mat.Width() > globalMaxWidth {
				globalMaxWidth = mat.Width()
			}
		}
		matsPerRound[r] = mats
	}
	logGlobalMaxHeight := utils.Log2Strict(uint64(globalMaxHeight))

	// The coset g*K for the largest height, bit-reversed. Its prefixes are
	// the bit-reversed cosets for every smaller height, so one table and
	// one inverse-denominator vector per point serve all matrices.
	coset := bitReversedCoset(logGlobalMaxHeight)
	invDenoms := computeInverseDenominators(matsPerRound, rounds, coset)

	openedValues := pcs.evaluateAndObserve(matsPerRound, rounds, coset, invDenoms, transcript)

	alpha := transcript.SampleExtElement()
	alphaPowers := utils.ComputeExtPowers(alpha, uint(globalMaxWidth))

	// One accumulator per height: the alpha-weighted sum of all quotient
	// vectors of that height. numReduced tracks how many columns have been
	// absorbed per height, so later matrices are offset by alpha^numReduced.
	var numReduced [domain.TwoAdicity + 1]int
	var reducedOpenings [domain.TwoAdicity + 1][]extensions.E4

	for r, mats := range matsPerRound {
		for m, mat := range mats {
			logHeight := utils.Log2Strict(uint64(mat.Height()))
			if reducedOpenings[logHeight] == nil {
				reducedOpenings[logHeight] = make([]extensions.E4, mat.Height())
			}

			compressed := compressColumns(mat, alphaPowers)
			for p, point := range rounds[r].Points[m] {
				alphaOffset := utils.ExtExp(alpha, uint64(numReduced[logHeight]))
				combined := combineWithPowers(alphaPowers, openedValues[r][m][p])
				accumulateQuotients(reducedOpenings[logHeight], compressed, invDenoms[point], combined, alphaOffset)
				numReduced[logHeight] += mat.Width()
			}
		}
	}

	var friInputs [][]extensions.E4
	for logHeight := domain.TwoAdicity; logHeight >= 0; logHeight-- {
		if reducedOpenings[logHeight] != nil {
			friInputs = append(friInputs, reducedOpenings[logHeight])
		}
	}

	openInput := func(index int) []merkle.BatchOpening[fr.Element] {
		openings := make([]merkle.BatchOpening[fr.Element], len(rounds))
		for r, round := range rounds {
			logBatchMax := utils.Log2Strict(uint64(maxHeight(matsPerRound[r])))
			openings[r] = pcs.inputMmcs.Open(round.Data, index>>uint(logGlobalMaxHeight-logBatchMax))
		}
		return openings
	}

	proof, err := fri.Prove(pcs.folding, pcs.friParams, pcs.challengeMmcs, friInputs, transcript, openInput)
	if err != nil {
		return nil, nil, err
	}
	return openedValues, proof, nil
}

// evaluateAndObserve computes the claimed evaluations by barycentric
// interpolation and absorbs every value into the transcript, in round,
// matrix, point, column order.
func (pcs *TwoAdicFriPCS) evaluateAndObserve(
	matsPerRound [][]*matrix.Dense[fr.Element],
	rounds []OpeningRound,
	coset []fr.Element,
	invDenoms map[extensions.E4][]extensions.E4,
	transcript *fiatshamir.Transcript,
) OpenedValues {
	openedValues := make(OpenedValues, len(rounds))
	for r, mats := range matsPerRound {
		openedValues[r] = make([][][]extensions.E4, len(mats))
		for m, mat := range mats {
			// A column of height 2^k with blow-up 2^b encodes a
			// polynomial of degree below 2^(k-b), which its first
			// 2^(k-b) bit-reversed rows already determine.
			height := mat.Height() >> uint(pcs.friParams.LogBlowup)
			lowRows := mat.FirstRows(height)

			points := rounds[r].Points[m]
			openedValues[r][m] = make([][]extensions.E4, len(points))
			for p, point := range points {
				ys := evaluateMatrixAt(lowRows, coset[:height], invDenoms[point][:height], point)
				for _, y := range ys {
					transcript.ObserveExtElement(y)
				}
				openedValues[r][m][p] = ys
			}
		}
	}
	return openedValues
}

// bitReversedCoset returns the elements of g*K, |K| = 2^logSize, permuted so
// that the first 2^j entries are the bit-reversed elements of the coset of
// size 2^j for every j <= logSize.
func bitReversedCoset(logSize int) []fr.Element {
	points := domain.NewCoset(domain.GroupGenerator(), logSize).Elements()
	domain.BitReverse(points)
	return points
}

// computeInverseDenominators precomputes, for every distinct opening point z,
// the vector of 1/(z - x) over the largest coset any matrix opened at z lives
// on, in bit-reversed order. Smaller matrices use a prefix of the vector.
func computeInverseDenominators(
	matsPerRound [][]*matrix.Dense[fr.Element],
	rounds []OpeningRound,
	coset []fr.Element,
) map[extensions.E4][]extensions.E4 {
	maxHeightForPoint := make(map[extensions.E4]int)
	for r, mats := range matsPerRound {
		for m, mat := range mats {
			for _, point := range rounds[r].Points[m] {
				if mat.Height() > maxHeightForPoint[point] {
					maxHeightForPoint[point] = mat.Height()
				}
			}
		}
	}

	invDenoms := make(map[extensions.E4][]extensions.E4, len(maxHeightForPoint))
	for point, height := range maxHeightForPoint {
		denoms := make([]extensions.E4, height)
		for i := 0; i < height; i++ {
			var x extensions.E4
			x.B0.A0 = coset[i]
			denoms[i].Sub(&point, &x)
		}
		invDenoms[point] = utils.BatchInvertExt(denoms)
	}
	return invDenoms
}

// evaluateMatrixAt evaluates every column of mat at the point by barycentric
// interpolation over the coset g*H the rows live on (bit-reversed, like the
// rows). invDenoms must hold 1/(point - x) for the same ordering of x.
//
// The barycentric weight at x is x / (|H| * g^|H|), giving
//
//	p(z) = (z^|H| - g^|H|) / (|H| * g^|H|) * sum_i p(x_i) * x_i / (z - x_i).
func evaluateMatrixAt(
	mat *matrix.Dense[fr.Element],
	coset []fr.Element,
	invDenoms []extensions.E4,
	point extensions.E4,
) []extensions.E4 {
	height, width := mat.Height(), mat.Width()

	sums := make([]extensions.E4, width)
	for i := 0; i < height; i++ {
		var weight, term extensions.E4
		weight.MulByElement(&invDenoms[i], &coset[i])

		row := mat.Row(i)
		for c := 0; c < width; c++ {
			term.MulByElement(&weight, &row[c])
			sums[c].Add(&sums[c], &term)
		}
	}

	// scale = (z^|H| - g^|H|) / (|H| * g^|H|)
	groupGen := domain.GroupGenerator()
	var shiftPow, denom, sizeElem fr.Element
	shiftPow.Exp(groupGen, big.NewInt(int64(height)))
	sizeElem.SetUint64(uint64(height))
	denom.Mul(&sizeElem, &shiftPow)
	denom.Inverse(&denom)

	var shiftPowExt extensions.E4
	shiftPowExt.B0.A0 = shiftPow

	scale := utils.ExtExp(point, uint64(height))
	scale.Sub(&scale, &shiftPowExt)
	scale.MulByElement(&scale, &denom)

	for c := range sums {
		sums[c].Mul(&sums[c], &scale)
	}
	return sums
}

// compressColumns collapses the columns of mat into a single vector using the
// given powers of the batching challenge: out[i] = sum_c powers[c] * mat[i][c].
func compressColumns(mat *matrix.Dense[fr.Element], alphaPowers []extensions.E4) []extensions.E4 {
	height := mat.Height()
	compressed := make([]extensions.E4, height)

	var errG errgroup.Group
	for start := 0; start < height; start += rowChunkSize {
		start := start
		end := min(start+rowChunkSize, height)
		errG.Go(func() error {
			for i := start; i < end; i++ {
				row := mat.Row(i)
				var acc, term extensions.E4
				for c := range row {
					term.MulByElement(&alphaPowers[c], &row[c])
					acc.Add(&acc, &term)
				}
				compressed[i] = acc
			}
			return nil
		})
	}
	_ = errG.Wait()
	return compressed
}

// combineWithPowers returns sum_c powers[c] * values[c], the same combination
// compressColumns applies to the rows, applied to the claimed evaluations.
func combineWithPowers(powers, values []extensions.E4) extensions.E4 {
	var acc, term extensions.E4
	for c := range values {
		term.Mul(&powers[c], &values[c])
		acc.Add(&acc, &term)
	}
	return acc
}

// accumulateQuotients adds alphaOffset * (combined - compressed[i]) * invDenoms[i]
// to every accumulator entry, which is the alpha-combined quotient
// (Mred(z) - Mred(x_i)) / (z - x_i) scaled into its slot of the batch.
func accumulateQuotients(accumulator, compressed []extensions.E4, invDenoms []extensions.E4, combined, alphaOffset extensions.E4) {
	var errG errgroup.Group
	for start := 0; start < len(accumulator); start += rowChunkSize {
		start := start
		end := min(start+rowChunkSize, len(accumulator))
		errG.Go(func() error {
			for i := start; i < end; i++ {
				var term extensions.E4
				term.Sub(&combined, &compressed[i])
				term.Mul(&term, &invDenoms[i])
				term.Mul(&term, &alphaOffset)
				accumulator[i].Add(&accumulator[i], &term)
			}
			return nil
		})
	}
	_ = errG.Wait()
}

func maxHeight(mats []*matrix.Dense[fr.Element]) int {
	max := 1
	for _, mat := range mats {
		if mat.Height() > max {
			max = mat.Height()
		}
	}
	return max
}
