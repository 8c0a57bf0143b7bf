// Package fiatshamir implements the deterministic challenger shared by the
// prover and the verifier.
//
// The transcript follows an observe-then-sample discipline: every prover
// message is absorbed before a challenge depending on it is squeezed. Both
// sides must perform the exact same sequence of observes and samples, in the
// same order, or the sampled challenges diverge and verification fails.
package fiatshamir

import (
	"crypto/sha256"
	"encoding"
	"encoding/binary"
	"hash"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
)

// The transcript is used to create challenge scalars.
// See: Fiat-Shamir
type Transcript struct {
	state hash.Hash
}

func NewTranscript(label string) *Transcript {
	digest := sha256.New()
	digest.Write([]byte(label))

	return &Transcript{
		state: digest,
	}
}

// Clone returns an independent copy of the transcript.
//
// This is used by the grinding search, which needs to evaluate candidate
// witnesses without disturbing the real state.
func (t *Transcript) Clone() *Transcript {
	marshaler, ok := t.state.(encoding.BinaryMarshaler)
	if !ok {
		panic("transcript hash state does not support cloning")
	}
	serialized, err := marshaler.MarshalBinary()
	if err != nil {
		panic("could not serialize transcript hash state: " + err.Error())
	}

	state := sha256.New()
	if err := state.(encoding.BinaryUnmarshaler).UnmarshalBinary(serialized); err != nil {
		panic("could not restore transcript hash state: " + err.Error())
	}

	return &Transcript{state: state}
}

// ObserveElement appends the canonical big-endian bytes of a base field
// element to the transcript.
func (t *Transcript) ObserveElement(element fr.Element) {
	bytes := element.Bytes()
	t.state.Write(bytes[:])
}

// ObserveExtElement appends an extension field element to the transcript,
// coordinate by coordinate.
func (t *Transcript) ObserveExtElement(element extensions.E4) {
	t.ObserveElement(element.B0.A0)
	t.ObserveElement(element.B0.A1)
	t.ObserveElement(element.B1.A0)
	t.ObserveElement(element.B1.A1)
}

// ObserveDigest appends a commitment digest to the transcript.
func (t *Transcript) ObserveDigest(digest [32]byte) {
	t.state.Write(digest[:])
}

// SampleElement squeezes a base field challenge from the transcript.
func (t *Transcript) SampleElement() fr.Element {
	squeezed := t.squeeze()

	var challenge fr.Element
	challenge.SetUint64(binary.BigEndian.Uint64(squeezed[:8]))
	return challenge
}

// SampleExtElement squeezes an extension field challenge from the transcript.
func (t *Transcript) SampleExtElement() extensions.E4 {
	squeezed := t.squeeze()

	var challenge extensions.E4
	challenge.B0.A0.SetUint64(binary.BigEndian.Uint64(squeezed[0:8]))
	challenge.B0.A1.SetUint64(binary.BigEndian.Uint64(squeezed[8:16]))
	challenge.B1.A0.SetUint64(binary.BigEndian.Uint64(squeezed[16:24]))
	challenge.B1.A1.SetUint64(binary.BigEndian.Uint64(squeezed[24:32]))
	return challenge
}

// SampleBits squeezes a uniform `bits`-bit integer from the transcript.
// These are used as query indices into evaluation vectors.
func (t *Transcript) SampleBits(bits int) int {
	if bits < 0 || bits > 31 {
		panic("can only sample between 0 and 31 bits")
	}
	squeezed := t.squeeze()

	value := binary.BigEndian.Uint64(squeezed[:8])
	return int(value & ((1 << uint(bits)) - 1))
}

// Grind searches for a witness element such that observing it and then
// sampling `bits` bits yields zero. The witness is absorbed into the
// transcript before returning, so prover and verifier stay aligned.
//
// The expected number of candidates tried is 2^bits.
func (t *Transcript) Grind(bits int) fr.Element {
	for candidate := uint64(0); ; candidate++ {
		var witness fr.Element
		witness.SetUint64(candidate)

		trial := t.Clone()
		trial.ObserveElement(witness)
		if trial.SampleBits(bits) == 0 {
			t.ObserveElement(witness)
			// Advance the real state past the sample, mirroring the trial.
			t.SampleBits(bits)
			return witness
		}
	}
}

// CheckWitness replays the grinding check on the verifier side.
func (t *Transcript) CheckWitness(bits int, witness fr.Element) bool {
	t.ObserveElement(witness)
	return t.SampleBits(bits) == 0
}

// squeeze computes a challenge from the transcript state.
//
// The state is hashed, reset, and re-seeded with the hash so that successive
// challenges are distinct and every challenge depends on all prior messages.
// This closely mimics the behaviour of a random oracle, given that the hash
// is collision resistant.
func (t *Transcript) squeeze() [32]byte {
	var squeezed [32]byte
	copy(squeezed[:], t.state.Sum(nil))

	// Clear the state and absorb the hash, which summarises
	// everything observed so far.
	t.state.Reset()
	t.state.Write(squeezed[:])

	return squeezed
}
