package math3d

import "fmt"

// LookAt returns the modelview matrix of a camera at eye looking at target.
//
// The camera basis is z' = eye - target, x' = up × z', y' = z' × x'.
// The result is basis · Translate(-target), so target lands on the origin
// and the camera looks down -z'. It fails with ErrDegenerateBasis when eye
// equals target or up is parallel to the view direction.
func LookAt(eye, target, up Vec3) (Mat4, error) {
	z, err := eye.Sub(target).NormalizeChecked()
	if err != nil {
		return Mat4{}, fmt.Errorf("eye equals target: %w", ErrDegenerateBasis)
	}
	x, err := up.Cross(z).NormalizeChecked()
	if err != nil {
		return Mat4{}, fmt.Errorf("up %v parallel to view direction: %w", up, ErrDegenerateBasis)
	}
	y := z.Cross(x).Normalize()

	basis := Identity()
	for i, axis := range [3]Vec3{x, y, z} {
		basis[i][0] = axis.X
		basis[i][1] = axis.Y
		basis[i][2] = axis.Z
	}
	return basis.Mul(Translate(target.Negate())), nil
}

// Projection returns the pinhole projection with coefficient coeff = -1/c,
// where c is the distance from the camera to the projection plane.
// coeff = 0 gives an orthographic projection.
func Projection(coeff float64) Mat4 {
	m := Identity()
	m[3][2] = coeff
	return m
}

// Viewport maps the cube [-1,1]³ onto the pixel box
// [x, x+w] × [y, y+h] × [0, depth].
func Viewport(x, y, w, h int, depth float64) Mat4 {
	m := Identity()
	m[0][0] = float64(w) / 2
	m[1][1] = float64(h) / 2
	m[2][2] = depth / 2
	m[0][3] = float64(x) + float64(w)/2
	m[1][3] = float64(y) + float64(h)/2
	m[2][3] = depth / 2
	return m
}
