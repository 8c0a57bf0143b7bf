package gofri

import (
	"math/big"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/domain"
	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
)

// twoAdicFolding folds bit-reversed evaluation vectors over two-adic
// subgroups. Row i of an unfolded vector of size 2^(k+1) pairs the
// evaluations at x and -x, where x = w^bitreverse(i) and w generates the
// subgroup of size 2^(k+1); folding interpolates the line through them and
// evaluates it at beta.
type twoAdicFolding struct{}

func (twoAdicFolding) FoldRow(index, logHeight int, beta extensions.E4, e0, e1 extensions.E4) extensions.E4 {
	gen := domain.Generator(logHeight + 1)
	var x fr.Element
	x.Exp(gen, big.NewInt(int64(domain.ReverseIndex(index, logHeight))))

	// The sibling point is -x, so the line through (x, e0) and (-x, e1)
	// evaluated at beta is e0 + (beta - x) * (e1 - e0) / (-2x).
	var denom fr.Element
	denom.Add(&x, &x)
	denom.Neg(&denom)
	denom.Inverse(&denom)

	var xExt, slope, folded extensions.E4
	xExt.B0.A0 = x
	slope.Sub(&e1, &e0)
	slope.MulByElement(&slope, &denom)

	folded.Sub(&beta, &xExt)
	folded.Mul(&folded, &slope)
	folded.Add(&folded, &e0)
	return folded
}

func (f twoAdicFolding) FoldMatrix(beta extensions.E4, pairs *matrix.Dense[extensions.E4]) []extensions.E4 {
	height := pairs.Height()
	logHeight := utils.Log2Strict(uint64(height))

	// Rewriting the FoldRow formula with t = 1/x gives
	// (e0 + e1)/2 + (e0 - e1) * beta * t/2, so one pass over the powers of
	// the inverse generator covers every row.
	half := fr.One()
	half.Halve()
	halvedInvPowers := utils.ComputePowers(domain.GeneratorInv(logHeight+1), uint(height))
	for i := range halvedInvPowers {
		halvedInvPowers[i].Mul(&halvedInvPowers[i], &half)
	}
	domain.BitReverse(halvedInvPowers)

	folded := make([]extensions.E4, height)
	for i := range folded {
		row := pairs.Row(i)

		var sum, diff, term extensions.E4
		sum.Add(&row[0], &row[1])
		sum.MulByElement(&sum, &half)

		diff.Sub(&row[0], &row[1])
		term.Mul(&diff, &beta)
		term.MulByElement(&term, &halvedInvPowers[i])

		folded[i].Add(&sum, &term)
	}
	return folded
}
