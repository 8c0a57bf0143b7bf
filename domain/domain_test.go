package domain

import (
	"math/big"
	"testing"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/stretchr/testify/require"
)

func TestGeneratorOrders(t *testing.T) {
	for _, logSize := range []int{0, 1, 2, 3, 10, TwoAdicity} {
		gen := Generator(logSize)

		var res fr.Element
		res.Exp(gen, new(big.Int).Lsh(big.NewInt(1), uint(logSize)))
		require.True(t, res.IsOne(), "generator for logSize=%d does not have order 2^%d", logSize, logSize)

		if logSize > 0 {
			res.Exp(gen, new(big.Int).Lsh(big.NewInt(1), uint(logSize-1)))
			require.False(t, res.IsOne(), "generator for logSize=%d has order smaller than 2^%d", logSize, logSize)
		}
	}
}

func TestGeneratorTooLarge(t *testing.T) {
	require.Panics(t, func() { Generator(TwoAdicity + 1) })
}

func TestGeneratorInv(t *testing.T) {
	gen := Generator(5)
	genInv := GeneratorInv(5)

	var prod fr.Element
	prod.Mul(&gen, &genInv)
	require.True(t, prod.IsOne())
}

func TestCosetElements(t *testing.T) {
	var shift fr.Element
	shift.SetUint64(7)
	coset := NewCoset(shift, 3)

	require.Equal(t, 8, coset.Size())

	elements := coset.Elements()
	require.Len(t, elements, 8)
	require.True(t, elements[0].Equal(&shift))

	gen := coset.Generator()
	for i := 1; i < len(elements); i++ {
		var expected fr.Element
		expected.Mul(&elements[i-1], &gen)
		require.True(t, expected.Equal(&elements[i]))
	}
}

func TestCosetContains(t *testing.T) {
	coset := NewCoset(GroupGenerator(), 3)

	for _, x := range coset.Elements() {
		require.True(t, coset.Contains(x))
	}

	// The subgroup itself is disjoint from the shifted coset, as the shift
	// has order larger than the subgroup size.
	for _, x := range NaturalCoset(3).Elements() {
		require.False(t, coset.Contains(x))
	}
}

// The bit-reversed enumeration of a coset of size 2^k agrees on its first 2^j
// entries with the bit-reversed enumeration of the coset of size 2^j with the
// same shift. This prefix property is what lets the opening protocol truncate
// one shared table instead of recomputing per height.
func TestBitReversedCosetPrefix(t *testing.T) {
	shift := GroupGenerator()

	large := NewCoset(shift, 3).Elements()
	BitReverse(large)

	small := NewCoset(shift, 2).Elements()
	BitReverse(small)

	require.Equal(t, small, large[:4])
}

func TestBitReverse(t *testing.T) {
	list := []int{0, 1, 2, 3, 4, 5, 6, 7}
	BitReverse(list)
	require.Equal(t, []int{0, 4, 2, 6, 1, 5, 3, 7}, list)

	require.Panics(t, func() { BitReverse([]int{0, 1, 2}) })
}

func TestReverseIndex(t *testing.T) {
	require.Equal(t, 0, ReverseIndex(0, 3))
	require.Equal(t, 4, ReverseIndex(1, 3))
	require.Equal(t, 3, ReverseIndex(6, 3))
	require.Equal(t, 0, ReverseIndex(0, 0))
}

func TestNewCosetInvalid(t *testing.T) {
	require.Panics(t, func() { NewCoset(fr.One(), TwoAdicity+1) })
	require.Panics(t, func() { NewCoset(fr.Element{}, 2) })
}
