package domain

import (
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
)

// Coset represents a multiplicative coset shift*H, where H is the unique
// subgroup of size 2^logSize.
//
// Cosets are immutable values and compare equal exactly when their shift and
// size agree.
type Coset struct {
	shift   fr.Element
	logSize int
}

// NewCoset returns the coset shift*H with |H| = 2^logSize.
//
// It panics if the subgroup does not exist in the field or if shift is zero.
func NewCoset(shift fr.Element, logSize int) Coset {
	if logSize < 0 || logSize > TwoAdicity {
		panic(fmt.Sprintf("no subgroup of size 2^%d: the field has two-adicity %d", logSize, TwoAdicity))
	}
	if shift.IsZero() {
		panic("coset shift must be non-zero")
	}
	return Coset{shift: shift, logSize: logSize}
}

// NaturalCoset returns the subgroup of size 2^logSize itself, i.e. the coset
// with shift one.
func NaturalCoset(logSize int) Coset {
	return NewCoset(fr.One(), logSize)
}

// Shift returns the coset shift.
func (c Coset) Shift() fr.Element {
	return c.shift
}

// LogSize returns log2 of the coset size.
func (c Coset) LogSize() int {
	return c.logSize
}

// Size returns the number of elements in the coset.
func (c Coset) Size() int {
	return 1 << c.logSize
}

// Generator returns the generator of the underlying subgroup H.
func (c Coset) Generator() fr.Element {
	return Generator(c.logSize)
}

// Elements returns all coset elements shift*g^i in natural order.
func (c Coset) Elements() []fr.Element {
	gen := c.Generator()
	elements := make([]fr.Element, c.Size())
	current := c.shift
	for i := range elements {
		elements[i] = current
		current.Mul(&current, &gen)
	}
	return elements
}

// Contains reports whether x lies in the coset, i.e. whether (x/shift) is a
// 2^logSize'th root of unity.
func (c Coset) Contains(x fr.Element) bool {
	var quot fr.Element
	quot.Inverse(&c.shift)
	quot.Mul(&quot, &x)
	quot.Exp(quot, new(big.Int).Lsh(big.NewInt(1), uint(c.logSize)))
	return quot.IsOne()
}
