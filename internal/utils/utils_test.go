package utils

import (
	"math/rand"
	"testing"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/stretchr/testify/require"
)

func TestComputePowersBaseCases(t *testing.T) {
	var x fr.Element
	x.SetUint64(5)

	require.Empty(t, ComputePowers(x, 0))

	powers := ComputePowers(x, 1)
	require.Len(t, powers, 1)
	require.True(t, powers[0].IsOne())
}

func TestComputePowers(t *testing.T) {
	var x fr.Element
	x.SetUint64(7)

	n := uint(10)
	powers := ComputePowers(x, n)
	require.Len(t, powers, int(n))

	expected := fr.One()
	for i := range powers {
		require.True(t, expected.Equal(&powers[i]), "power %d is incorrect", i)
		expected.Mul(&expected, &x)
	}
}

func TestComputeExtPowers(t *testing.T) {
	var x extensions.E4
	x.MustSetRandom()

	powers := ComputeExtPowers(x, 8)
	require.Len(t, powers, 8)

	var expected extensions.E4
	expected.SetOne()
	for i := range powers {
		require.Equal(t, expected, powers[i], "power %d is incorrect", i)
		expected.Mul(&expected, &x)
	}
}

func TestExtExp(t *testing.T) {
	var x extensions.E4
	x.MustSetRandom()

	var expected extensions.E4
	expected.SetOne()
	for k := uint64(0); k < 20; k++ {
		require.Equal(t, expected, ExtExp(x, k), "x^%d is incorrect", k)
		expected.Mul(&expected, &x)
	}
}

func TestBatchInvertExt(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	elems := make([]extensions.E4, 16)
	for i := range elems {
		elems[i].B0.A0.SetUint64(rng.Uint64())
		elems[i].B0.A1.SetUint64(rng.Uint64())
		elems[i].B1.A0.SetUint64(rng.Uint64())
		elems[i].B1.A1.SetUint64(1 + rng.Uint64()%1000)
	}

	inverses := BatchInvertExt(elems)
	require.Len(t, inverses, len(elems))

	for i := range elems {
		var expected extensions.E4
		expected.Inverse(&elems[i])
		require.Equal(t, expected, inverses[i], "inverse %d is incorrect", i)
	}
}

func TestBatchInvertExtEmpty(t *testing.T) {
	require.Empty(t, BatchInvertExt(nil))
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []uint64{1, 2, 4, 8, 1 << 20} {
		require.True(t, IsPowerOfTwo(v))
	}
	for _, v := range []uint64{0, 3, 6, 12, (1 << 20) + 1} {
		require.False(t, IsPowerOfTwo(v))
	}
}

func TestLog2Strict(t *testing.T) {
	require.Equal(t, 0, Log2Strict(1))
	require.Equal(t, 3, Log2Strict(8))
	require.Equal(t, 20, Log2Strict(1<<20))

	require.Panics(t, func() { Log2Strict(0) })
	require.Panics(t, func() { Log2Strict(6) })
}

func TestReverse(t *testing.T) {
	list := []int{1, 2, 3, 4, 5}
	Reverse(list)
	require.Equal(t, []int{5, 4, 3, 2, 1}, list)
}
