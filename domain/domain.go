// Package domain implements the two-adic subgroup and coset arithmetic that
// evaluation vectors live over, together with the FFT based low-degree
// extension used at commitment time.
package domain

import (
	"fmt"
	"math/big"
	"math/bits"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
)

// TwoAdicity is the largest i such that the multiplicative group of the field
// contains a subgroup of size 2^i. For koalabear, q - 1 = 2^24 * 127.
const TwoAdicity = 24

var (
	// Generator of the whole multiplicative group of the field.
	groupGenerator fr.Element

	// Generator of the largest 2-adic subgroup.
	// This particular element has order 2^TwoAdicity == 2^24.
	rootOfUnity fr.Element
)

func init() {
	groupGenerator.SetUint64(3)
	if _, err := rootOfUnity.SetString("1791270792"); err != nil {
		panic("failed to initialize root of unity")
	}
}

// GroupGenerator returns a generator of the multiplicative group of the
// field. It is used as the canonical coset shift: every committed matrix is
// extended onto a coset of the form g*K regardless of its original shift.
func GroupGenerator() fr.Element {
	return groupGenerator
}

// Generator returns the canonical generator of the unique subgroup of size
// 2^logSize.
//
// It panics if logSize exceeds the two-adicity of the field.
func Generator(logSize int) fr.Element {
	if logSize < 0 || logSize > TwoAdicity {
		panic(fmt.Sprintf("no subgroup of size 2^%d: the field has two-adicity %d", logSize, TwoAdicity))
	}

	// Powering the 2^24 root of unity by 2^(24-logSize) gives an element
	// of order 2^logSize.
	var gen fr.Element
	gen.Exp(rootOfUnity, new(big.Int).Lsh(big.NewInt(1), uint(TwoAdicity-logSize)))
	return gen
}

// GeneratorInv returns the inverse of Generator(logSize).
func GeneratorInv(logSize int) fr.Element {
	gen := Generator(logSize)
	gen.Inverse(&gen)
	return gen
}

// BitReverse applies the bit-reversal permutation to `list`.
// `len(list)` must be a power of 2
//
// This means that for post-state list output and pre-state list input,
// we have output[i] == input[bitreverse(i)], where bitreverse reverses the
// bit-pattern of i, interpreted as a log2(len(list))-bit integer.
func BitReverse[K interface{}](list []K) {
	n := len(list)
	if n&(n-1) != 0 {
		panic(fmt.Sprintf("length (%d) given to BitReverse must be a power of two", n))
	}
	logN := bits.TrailingZeros(uint(n))

	for i := 0; i < n; i++ {
		irev := ReverseIndex(i, logN)
		if irev > i {
			list[i], list[irev] = list[irev], list[i]
		}
	}
}

// ReverseIndex reverses the bit-pattern of i, interpreted as a logSize-bit
// integer. i must be smaller than 2^logSize.
func ReverseIndex(i int, logSize int) int {
	// The standard library's bits.Reverse64 inverts its input as a 64-bit
	// unsigned integer, so we correct by shifting appropriately.
	return int(bits.Reverse64(uint64(i)) >> (64 - uint(logSize)))
}
