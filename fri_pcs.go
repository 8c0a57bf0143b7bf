// Package gofri implements a polynomial commitment scheme built on the FRI
// low-degree test over the koalabear field.
//
// Polynomials are committed as matrices of evaluations: each column of a
// matrix is one polynomial, evaluated over a two-adic coset. Commitment
// low-degree extends every matrix onto the canonical coset g*K, where g
// generates the multiplicative group of the field, and Merkle-hashes the
// result. Opening batches every matrix and opening point into a single
// random linear combination of quotients, whose low degree a FRI proof then
// attests to.
package gofri

import (
	"crypto/sha256"
	"fmt"
	"hash"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/domain"
	"github.com/crate-crypto/go-fri/fri"
	"github.com/crate-crypto/go-fri/internal/utils"
	"github.com/crate-crypto/go-fri/matrix"
	"github.com/crate-crypto/go-fri/merkle"
)

// Commitment is a binding commitment to a batch of evaluation matrices.
type Commitment = merkle.Digest

// ProverData is the prover's auxiliary state for one commitment. It is needed
// to open the commitment and is never sent to the verifier.
type ProverData = merkle.ProverData[fr.Element]

// CommitInput pairs a matrix of evaluations with the coset the evaluations
// were taken over. Column c holds the evaluations of the c'th polynomial over
// Domain, in natural order.
type CommitInput struct {
	Domain      domain.Coset
	Evaluations *matrix.Dense[fr.Element]
}

// TwoAdicFriPCS is a FRI based polynomial commitment scheme over two-adic
// evaluation domains.
type TwoAdicFriPCS struct {
	friParams     fri.Parameters
	folding       twoAdicFolding
	inputMmcs     *merkle.Mmcs[fr.Element]
	challengeMmcs *merkle.Mmcs[extensions.E4]
}

// NewTwoAdicFriPCS returns a PCS with the given FRI parameters.
func NewTwoAdicFriPCS(params fri.Parameters) *TwoAdicFriPCS {
	newHash := func() hash.Hash { return sha256.New() }
	return &TwoAdicFriPCS{
		friParams:     params,
		inputMmcs:     merkle.New(encodeBase, newHash),
		challengeMmcs: merkle.New(encodeExt, newHash),
	}
}

// NaturalDomainForDegree returns the canonical evaluation domain for
// polynomials of degree below `degree`: the subgroup of that size, unshifted.
//
// It panics if degree is not a power of two within the two-adicity of the
// field.
func (pcs *TwoAdicFriPCS) NaturalDomainForDegree(degree int) domain.Coset {
	return domain.NaturalCoset(utils.Log2Strict(uint64(degree)))
}

// Commit commits to a batch of evaluation matrices.
//
// Each matrix is re-interpreted onto the canonical coset g*K of size
// domain.Size() << LogBlowup by a low-degree extension, bit-reversed, and
// absorbed into a single Merkle commitment.
func (pcs *TwoAdicFriPCS) Commit(inputs []CommitInput) (Commitment, *ProverData, error) {
	ldes := make([]*matrix.Dense[fr.Element], len(inputs))
	for i, input := range inputs {
		if input.Domain.Size() != input.Evaluations.Height() {
			return Commitment{}, nil, fmt.Errorf("%w: domain has size %d but the matrix has height %d",
				ErrDomainSizeMismatch, input.Domain.Size(), input.Evaluations.Height())
		}

		// The columns are evaluations over shift*H. Viewing them as
		// evaluations of p(shift*X) over H and extending onto
		// (g/shift)*K places the result on g*K for every matrix.
		domainShift := input.Domain.Shift()
		var shift fr.Element
		shift.Inverse(&domainShift)
		groupGen := domain.GroupGenerator()
		shift.Mul(&shift, &groupGen)

		lde := domain.CosetLDEBatch(input.Evaluations, pcs.friParams.LogBlowup, shift)
		lde.BitReverseRows()
		ldes[i] = lde
	}

	return pcs.inputMmcs.Commit(ldes)
}

// GetEvaluationsOnDomain returns the evaluations of the index'th committed
// matrix over the given domain, in natural order over the domain.
//
// The domain must be a prefix of the committed LDE domain: its shift must be
// the group generator and its size must not exceed the LDE height. The call
// panics otherwise, as this is a misuse rather than untrusted input.
func (pcs *TwoAdicFriPCS) GetEvaluationsOnDomain(data *ProverData, index int, dom domain.Coset) *matrix.Dense[fr.Element] {
	shift := dom.Shift()
	groupGen := domain.GroupGenerator()
	if !shift.Equal(&groupGen) {
		panic("evaluations are only available on cosets shifted by the group generator")
	}

	lde := pcs.inputMmcs.GetMatrices(data)[index]
	if dom.Size() > lde.Height() {
		panic(fmt.Sprintf("domain of size %d exceeds the committed evaluation vector of height %d", dom.Size(), lde.Height()))
	}

	// The LDE is stored bit-reversed, so its first rows are exactly the
	// bit-reversed evaluations over the smaller coset. Reversing again
	// restores natural order.
	evals := lde.FirstRows(dom.Size()).Copy()
	evals.BitReverseRows()
	return evals
}

func encodeBase(e fr.Element) []byte {
	bytes := e.Bytes()
	return bytes[:]
}

func encodeExt(e extensions.E4) []byte {
	var out [16]byte
	for i, coord := range []fr.Element{e.B0.A0, e.B0.A1, e.B1.A0, e.B1.A1} {
		bytes := coord.Bytes()
		copy(out[4*i:], bytes[:])
	}
	return out[:]
}
