package fri

import (
	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/crate-crypto/go-fri/merkle"
)

// Proof is a complete FRI proof.
type Proof struct {
	// CommitPhaseCommits are the commitments to the paired evaluation
	// vectors, one per folding round.
	CommitPhaseCommits []merkle.Digest

	// QueryProofs answers the sampled query indices, in sampling order.
	QueryProofs []QueryProof

	// FinalPoly is the constant the folding terminates in.
	FinalPoly extensions.E4

	// PowWitness satisfies the grinding check performed between the final
	// polynomial and the query sampling.
	PowWitness fr.Element
}

// QueryProof answers a single query index.
type QueryProof struct {
	// InputProof opens the input commitments at the query index. Its
	// contents are opaque to this package; the input openers produce and
	// consume it.
	InputProof []merkle.BatchOpening[fr.Element]

	// CommitPhaseOpenings open each folding round at the query index.
	CommitPhaseOpenings []CommitPhaseOpening
}

// CommitPhaseOpening opens one folding round at one query index: the sibling
// pair the round folded, plus the path authenticating it.
type CommitPhaseOpening struct {
	Opening merkle.BatchOpening[extensions.E4]
}
