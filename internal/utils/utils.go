package utils

import (
	"fmt"
	"math/bits"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
)

// Computes x^0 to x^n-1
// If n==0: an empty slice is returned
func ComputePowers(x fr.Element, n uint) []fr.Element {
	if n == 0 {
		return []fr.Element{}
	}

	powers := make([]fr.Element, n)
	powers[0].SetOne()
	for i := uint(1); i < n; i++ {
		powers[i].Mul(&powers[i-1], &x)
	}

	return powers
}

// Computes x^0 to x^n-1 for an extension field element.
func ComputeExtPowers(x extensions.E4, n uint) []extensions.E4 {
	powers := make([]extensions.E4, n)
	if n == 0 {
		return powers
	}
	powers[0].SetOne()
	for i := uint(1); i < n; i++ {
		powers[i].Mul(&powers[i-1], &x)
	}

	return powers
}

// ExtExp computes x^k by square and multiply.
func ExtExp(x extensions.E4, k uint64) extensions.E4 {
	var result extensions.E4
	result.SetOne()
	if k == 0 {
		return result
	}

	for i := bits.Len64(k); i > 0; i-- {
		result.Mul(&result, &result)
		if (k>>(i-1))&1 == 1 {
			result.Mul(&result, &x)
		}
	}

	return result
}

// BatchInvertExt inverts every element of the slice using Montgomery's trick,
// trading n inversions for one inversion and 3(n-1) multiplications.
//
// This mirrors fr.BatchInvert, which gnark-crypto only generates for the base
// field. All elements must be non-zero.
func BatchInvertExt(elems []extensions.E4) []extensions.E4 {
	result := make([]extensions.E4, len(elems))
	if len(elems) == 0 {
		return result
	}

	// result[i] holds the product elems[0] * ... * elems[i-1].
	var acc extensions.E4
	acc.SetOne()
	for i := range elems {
		result[i] = acc
		acc.Mul(&acc, &elems[i])
	}

	acc.Inverse(&acc)

	for i := len(elems) - 1; i >= 0; i-- {
		result[i].Mul(&result[i], &acc)
		acc.Mul(&acc, &elems[i])
	}

	return result
}

// Return true if `value` is a power of two
// `0` will return false
func IsPowerOfTwo(value uint64) bool {
	return value > 0 && (value&(value-1) == 0)
}

// Log2Strict returns log2(n), panicking unless n is a power of two.
func Log2Strict(n uint64) int {
	if !IsPowerOfTwo(n) {
		panic(fmt.Sprintf("n (%d) is not a power of two", n))
	}
	return bits.TrailingZeros64(n)
}

// Reverses the list in-place
func Reverse[K interface{}](list []K) {
	last := len(list) - 1
	for i := 0; i < len(list)/2; i++ {
		list[i], list[last-i] = list[last-i], list[i]
	}
}
