package math3d

import "errors"

// Epsilon is the tolerance used for near-zero tests on lengths and
// homogeneous w components.
const Epsilon = 1e-9

// SingularEpsilon is the determinant magnitude, relative to the product
// of the row lengths, below which a matrix is treated as singular. The
// ratio is 1 for an orthogonal matrix of any scale and 0 when rows are
// linearly dependent.
const SingularEpsilon = 1e-12

var (
	// ErrSingular is returned when inverting a matrix whose determinant is zero.
	ErrSingular = errors.New("math3d: singular matrix")

	// ErrZeroLength is returned when normalizing a zero-length vector.
	ErrZeroLength = errors.New("math3d: zero-length vector")

	// ErrPointAtInfinity is returned when a projected point has w≈0.
	ErrPointAtInfinity = errors.New("math3d: point at infinity (w≈0)")

	// ErrDegenerateBasis is returned by LookAt when the up vector is
	// parallel to the view direction or the eye coincides with the target.
	ErrDegenerateBasis = errors.New("math3d: degenerate camera basis")
)
