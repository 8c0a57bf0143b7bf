package gofri

import (
	"math/rand"
	"testing"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/stretchr/testify/require"

	"github.com/crate-crypto/go-fri/domain"
	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
)

// evalPolyExt evaluates the polynomial with the given base field coefficients
// at an extension field point, via Horner's rule.
func evalPolyExt(coeffs []fr.Element, z extensions.E4) extensions.E4 {
	var acc extensions.E4
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, &z)
		var coeff extensions.E4
		coeff.B0.A0 = coeffs[i]
		acc.Add(&acc, &coeff)
	}
	return acc
}

// evalPoly evaluates the polynomial at a base field point.
func evalPoly(coeffs []fr.Element, x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &coeffs[i])
	}
	return acc
}

func matrixFromColumns(columns [][]fr.Element) *matrix.Dense[fr.Element] {
	height, width := len(columns[0]), len(columns)
	values := make([]fr.Element, height*width)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			values[r*width+c] = columns[c][r]
		}
	}
	return matrix.NewDense(values, width)
}

func TestBarycentricEvaluationMatchesHorner(t *testing.T) {
	rng := rand.New(rand.NewSource(20))

	const logHeight = 3
	const width = 2
	height := 1 << logHeight

	// Column c holds the evaluations of a random polynomial over the coset
	// g*H, stored bit-reversed like a committed matrix.
	coeffs := make([][]fr.Element, width)
	columns := make([][]fr.Element, width)
	shiftedCoset := domain.NewCoset(domain.GroupGenerator(), logHeight)
	for c := range columns {
		coeffs[c] = make([]fr.Element, height)
		for i := range coeffs[c] {
			coeffs[c][i] = randElement(rng)
		}
		columns[c] = make([]fr.Element, height)
		for i, x := range shiftedCoset.Elements() {
			columns[c][i] = evalPoly(coeffs[c], x)
		}
	}
	mat := matrixFromColumns(columns)
	mat.BitReverseRows()

	coset := bitReversedCoset(logHeight)
	point := randExt(rng)

	denoms := make([]extensions.E4, height)
	for i := range denoms {
		var x extensions.E4
		x.B0.A0 = coset[i]
		denoms[i].Sub(&point, &x)
	}
	invDenoms := utils.BatchInvertExt(denoms)

	got := evaluateMatrixAt(mat, coset, invDenoms, point)
	require.Len(t, got, width)
	for c := 0; c < width; c++ {
		require.Equal(t, evalPolyExt(coeffs[c], point), got[c], "column %d", c)
	}
}

// Two equal-height matrices opened at the same point batch into
// q_A + alpha^width(A) * q_B, where q_M is the quotient vector of M alone.
func TestQuotientBatchingIsLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(22))

	const logHeight = 3
	height := 1 << logHeight

	colA := make([]fr.Element, height)
	colB := make([]fr.Element, height)
	for i := 0; i < height; i++ {
		colA[i] = randElement(rng)
		colB[i] = randElement(rng)
	}
	matA := matrix.NewDense(colA, 1)
	matB := matrix.NewDense(colB, 1)

	point := randExt(rng)
	alpha := randExt(rng)
	yA, yB := randExt(rng), randExt(rng)

	coset := bitReversedCoset(logHeight)
	denoms := make([]extensions.E4, height)
	for i := range denoms {
		var x extensions.E4
		x.B0.A0 = coset[i]
		denoms[i].Sub(&point, &x)
	}
	invDenoms := utils.BatchInvertExt(denoms)

	var one extensions.E4
	one.SetOne()
	alphaPowers := []extensions.E4{one}

	// Accumulate both matrices the way Open does: the second is offset by
	// alpha^1 since the first contributed one column.
	combined := make([]extensions.E4, height)
	accumulateQuotients(combined, compressColumns(matA, alphaPowers), invDenoms, combineWithPowers(alphaPowers, []extensions.E4{yA}), one)
	accumulateQuotients(combined, compressColumns(matB, alphaPowers), invDenoms, combineWithPowers(alphaPowers, []extensions.E4{yB}), alpha)

	for i := 0; i < height; i++ {
		var quotientA, quotientB, rowExt, expected extensions.E4

		rowExt.B0.A0 = colA[i]
		quotientA.Sub(&yA, &rowExt)
		quotientA.Mul(&quotientA, &invDenoms[i])

		rowExt.B0.A0 = colB[i]
		quotientB.Sub(&yB, &rowExt)
		quotientB.Mul(&quotientB, &invDenoms[i])
		quotientB.Mul(&quotientB, &alpha)

		expected.Add(&quotientA, &quotientB)
		require.Equal(t, expected, combined[i], "entry %d", i)
	}
}

func TestInverseDenominatorsCoverLargestHeight(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	small := matrix.NewDense(make([]fr.Element, 4), 1)
	large := matrix.NewDense(make([]fr.Element, 16), 1)
	point := randExt(rng)

	rounds := []OpeningRound{{Points: [][]extensions.E4{{point}, {point}}}}
	matsPerRound := [][]*matrix.Dense[fr.Element]{{small, large}}

	coset := bitReversedCoset(4)
	invDenoms := computeInverseDenominators(matsPerRound, rounds, coset)

	require.Len(t, invDenoms, 1)
	require.Len(t, invDenoms[point], 16)

	// Spot-check an entry against a direct inversion.
	var expected, x extensions.E4
	x.B0.A0 = coset[7]
	expected.Sub(&point, &x)
	expected.Inverse(&expected)
	require.Equal(t, expected, invDenoms[point][7])
}
