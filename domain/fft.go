package domain

import (
	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"golang.org/x/sync/errgroup"

	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
)

// FFT evaluates the polynomial given by `coeffs` over the subgroup of size
// len(coeffs). The result is in natural order.
func FFT(coeffs []fr.Element) []fr.Element {
	logN := utils.Log2Strict(uint64(len(coeffs)))

	output := make([]fr.Element, len(coeffs))
	copy(output, coeffs)
	fftInPlace(output, Generator(logN))
	return output
}

// IFFT interpolates the evaluations over the subgroup of size len(evals) back
// into coefficients.
func IFFT(evals []fr.Element) []fr.Element {
	n := len(evals)
	logN := utils.Log2Strict(uint64(n))

	output := make([]fr.Element, n)
	copy(output, evals)
	fftInPlace(output, GeneratorInv(logN))

	// Scale by the inverse of the domain size
	var invDomain fr.Element
	invDomain.SetInt64(int64(n))
	invDomain.Inverse(&invDomain)

	for i := 0; i < n; i++ {
		output[i].Mul(&output[i], &invDomain)
	}

	return output
}

// CosetLDEBatch extends each column of m from its evaluations over the
// subgroup H of size m.Height() to evaluations over the coset shift*K, where
// K is the subgroup of size m.Height() << addedBits.
//
// Note that if the input columns are evaluations of p over a coset xH rather
// than over H itself, the output columns are evaluations of p over the coset
// x*shift*K. Callers exploit this by choosing shift = g/x so that every
// matrix ends up on the canonical coset gK.
//
// Columns are processed in parallel; they are fully independent.
func CosetLDEBatch(m *matrix.Dense[fr.Element], addedBits int, shift fr.Element) *matrix.Dense[fr.Element] {
	n := m.Height()
	logN := utils.Log2Strict(uint64(n))
	if logN+addedBits > TwoAdicity {
		panic("extended domain exceeds the two-adicity of the field")
	}
	extendedSize := n << addedBits

	output := matrix.NewDense(make([]fr.Element, extendedSize*m.Width()), m.Width())

	var errG errgroup.Group
	for c := 0; c < m.Width(); c++ {
		_c := c
		errG.Go(func() error {
			coeffs := IFFT(m.Column(_c))

			// Evaluating p(shift * x) over K is the same as evaluating
			// p over shift*K, so scale the coefficients by powers of
			// the shift and run a plain FFT at the extended size.
			padded := make([]fr.Element, extendedSize)
			scale := fr.One()
			for i := range coeffs {
				padded[i].Mul(&coeffs[i], &scale)
				scale.Mul(&scale, &shift)
			}
			fftInPlace(padded, Generator(logN+addedBits))

			for r := 0; r < extendedSize; r++ {
				output.Row(r)[_c] = padded[r]
			}
			return nil
		})
	}
	// The workers never return an error; Wait is only used as a join point.
	_ = errG.Wait()

	return output
}

// fftInPlace performs an in-place Cooley-Tukey FFT.
//
// nthRootOfUnity must be a primitive len(values)'th root of unity.
func fftInPlace(values []fr.Element, nthRootOfUnity fr.Element) {
	n := len(values)
	if n == 1 {
		return
	}

	// Decimation-in-frequency (DIF) FFT - Gentleman-Sande butterfly
	// Takes input in natural order, produces output in bit-reversed order
	for size := n; size >= 2; size /= 2 {
		halfSize := size / 2

		// Compute the twiddle factor step for this stage
		// We need w = nthRootOfUnity^(n/size) as the primitive size-th root of unity
		var wStep fr.Element
		exp := uint64(n / size)
		wStep.Set(&nthRootOfUnity)
		for i := uint64(1); i < exp; i++ {
			wStep.Mul(&wStep, &nthRootOfUnity)
		}

		for start := 0; start < n; start += size {
			w := fr.One()
			for k := 0; k < halfSize; k++ {
				topIdx := start + k
				botIdx := start + k + halfSize

				// Gentleman-Sande butterfly
				var tmp fr.Element
				tmp.Sub(&values[topIdx], &values[botIdx])
				values[topIdx].Add(&values[topIdx], &values[botIdx])
				values[botIdx].Mul(&tmp, &w)

				w.Mul(&w, &wStep)
			}
		}
	}

	// Bit-reverse permutation to get output in natural order
	BitReverse(values)
}
