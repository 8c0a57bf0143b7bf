package gofri

import "errors"

var (
	// ErrDomainSizeMismatch is returned by Commit when a matrix height does
	// not equal the size of its evaluation domain.
	ErrDomainSizeMismatch = errors.New("pcs: matrix height does not match the evaluation domain size")

	// ErrPointCountMismatch is returned by Open when a round does not carry
	// one point list per committed matrix.
	ErrPointCountMismatch = errors.New("pcs: number of point lists does not match the number of committed matrices")

	// ErrMatrixTooShort is returned by Open when a committed matrix is
	// shorter than the blow-up, so no polynomial can be associated with it.
	ErrMatrixTooShort = errors.New("pcs: committed matrix is shorter than the blow-up")

	// ErrClaimShapeMismatch is returned by Verify when the claimed openings
	// are inconsistent with each other or with the opened rows.
	ErrClaimShapeMismatch = errors.New("pcs: claimed openings do not match the opened row shapes")

	// ErrDomainTooLarge is returned by Verify when a claimed domain blown up
	// by the FRI parameters exceeds the two-adicity of the field.
	ErrDomainTooLarge = errors.New("pcs: claimed domain exceeds the two-adicity of the field once blown up")
)
