package gofri

import (
	"math/rand"
	"testing"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/stretchr/testify/require"

	"github.com/crate-crypto/go-fri/domain"
	"github.com/crate-crypto/go-fri/matrix"
)

func randElement(rng *rand.Rand) fr.Element {
	var e fr.Element
	e.SetUint64(rng.Uint64())
	return e
}

func randExt(rng *rand.Rand) extensions.E4 {
	var e extensions.E4
	e.B0.A0.SetUint64(rng.Uint64())
	e.B0.A1.SetUint64(rng.Uint64())
	e.B1.A0.SetUint64(rng.Uint64())
	e.B1.A1.SetUint64(rng.Uint64())
	return e
}

func randExtVector(rng *rand.Rand, n int) []extensions.E4 {
	vector := make([]extensions.E4, n)
	for i := range vector {
		vector[i] = randExt(rng)
	}
	return vector
}

func TestFoldRowMatchesFoldMatrix(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	var folding twoAdicFolding

	pairs := matrix.NewDense(randExtVector(rng, 16), 2)
	beta := randExt(rng)

	folded := folding.FoldMatrix(beta, pairs)
	require.Len(t, folded, 8)
	for i := 0; i < 8; i++ {
		row := pairs.Row(i)
		require.Equal(t, folded[i], folding.FoldRow(i, 3, beta, row[0], row[1]), "row %d", i)
	}
}

// Folding the bit-reversed evaluations of p(X) = pe(X^2) + X*po(X^2) must
// yield the bit-reversed evaluations of pe(Y) + beta*po(Y) on the half-size
// subgroup.
func TestFoldMatrixHalvesPolynomial(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var folding twoAdicFolding

	const logHeight = 3
	coeffs := make([]fr.Element, 2<<logHeight)
	for i := range coeffs {
		coeffs[i] = randElement(rng)
	}
	evenCoeffs := make([]fr.Element, 1<<logHeight)
	oddCoeffs := make([]fr.Element, 1<<logHeight)
	for i := range evenCoeffs {
		evenCoeffs[i] = coeffs[2*i]
		oddCoeffs[i] = coeffs[2*i+1]
	}

	evals := domain.FFT(coeffs)
	domain.BitReverse(evals)
	unfolded := make([]extensions.E4, len(evals))
	for i := range evals {
		unfolded[i].B0.A0 = evals[i]
	}

	beta := randExt(rng)
	folded := folding.FoldMatrix(beta, matrix.NewDense(unfolded, 2))

	evenEvals := domain.FFT(evenCoeffs)
	oddEvals := domain.FFT(oddCoeffs)
	domain.BitReverse(evenEvals)
	domain.BitReverse(oddEvals)

	for i := range folded {
		var expected extensions.E4
		expected.MulByElement(&beta, &oddEvals[i])
		var evenExt extensions.E4
		evenExt.B0.A0 = evenEvals[i]
		expected.Add(&expected, &evenExt)
		require.Equal(t, expected, folded[i], "entry %d", i)
	}
}
