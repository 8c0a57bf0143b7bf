package fiatshamir

import (
	"testing"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/stretchr/testify/require"
)

func TestTranscriptDeterminism(t *testing.T) {
	buildChallenge := func() fr.Element {
		transcript := NewTranscript("determinism")
		var e fr.Element
		e.SetUint64(42)
		transcript.ObserveElement(e)
		return transcript.SampleElement()
	}

	first := buildChallenge()
	second := buildChallenge()
	require.True(t, first.Equal(&second))
}

func TestTranscriptDivergesOnDifferentObservations(t *testing.T) {
	a := NewTranscript("divergence")
	b := NewTranscript("divergence")

	var e1, e2 fr.Element
	e1.SetUint64(1)
	e2.SetUint64(2)

	a.ObserveElement(e1)
	b.ObserveElement(e2)

	ca := a.SampleElement()
	cb := b.SampleElement()
	require.False(t, ca.Equal(&cb))
}

func TestTranscriptDivergesOnOrder(t *testing.T) {
	a := NewTranscript("order")
	b := NewTranscript("order")

	var e1, e2 fr.Element
	e1.SetUint64(1)
	e2.SetUint64(2)

	a.ObserveElement(e1)
	a.ObserveElement(e2)
	b.ObserveElement(e2)
	b.ObserveElement(e1)

	ca := a.SampleElement()
	cb := b.SampleElement()
	require.False(t, ca.Equal(&cb))
}

func TestSuccessiveChallengesDiffer(t *testing.T) {
	transcript := NewTranscript("successive")

	first := transcript.SampleElement()
	second := transcript.SampleElement()
	require.False(t, first.Equal(&second))
}

func TestSampleExtElementCoordinatesDiffer(t *testing.T) {
	transcript := NewTranscript("ext")
	challenge := transcript.SampleExtElement()

	// All four coordinates coming out identical would indicate the squeeze
	// reused the same bytes for each coordinate.
	require.False(t, challenge.B0.A0.Equal(&challenge.B0.A1))
}

func TestSampleBitsRange(t *testing.T) {
	transcript := NewTranscript("bits")

	for i := 0; i < 100; i++ {
		v := transcript.SampleBits(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 32)
	}

	require.Equal(t, 0, transcript.SampleBits(0))
	require.Panics(t, func() { transcript.SampleBits(32) })
}

func TestCloneIndependence(t *testing.T) {
	original := NewTranscript("clone")
	var e fr.Element
	e.SetUint64(7)
	original.ObserveElement(e)

	clone := original.Clone()

	// Sampling from the clone must not affect the original.
	fromClone := clone.SampleElement()
	fromOriginal := original.SampleElement()
	require.True(t, fromClone.Equal(&fromOriginal))

	// After the states diverge, so do the challenges.
	clone.ObserveElement(e)
	c1 := clone.SampleElement()
	c2 := original.SampleElement()
	require.False(t, c1.Equal(&c2))
}

func TestGrindCheckWitness(t *testing.T) {
	const bits = 4

	prover := NewTranscript("grind")
	verifier := NewTranscript("grind")

	var e fr.Element
	e.SetUint64(99)
	prover.ObserveElement(e)
	verifier.ObserveElement(e)

	witness := prover.Grind(bits)
	require.True(t, verifier.CheckWitness(bits, witness))

	// Prover and verifier transcripts must remain aligned after grinding.
	cp := prover.SampleElement()
	cv := verifier.SampleElement()
	require.True(t, cp.Equal(&cv))
}

func TestCheckWitnessRejectsWrongWitness(t *testing.T) {
	const bits = 8

	prover := NewTranscript("grind-reject")
	witness := prover.Grind(bits)

	var wrong fr.Element
	wrong.SetUint64(1)
	wrong.Add(&witness, &wrong)

	verifier := NewTranscript("grind-reject")
	// A single wrong witness should fail with probability 1 - 2^-8; this
	// particular one is known to fail.
	require.False(t, verifier.CheckWitness(bits, wrong))
}
