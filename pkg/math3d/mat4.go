package math3d

import "math"

// Mat4 is a 4x4 matrix stored row-major: m[row][col].
// Vectors are columns, so a transform applied to p is m.MulVec4(p) and
// a.Mul(b) applies b first.
//
// For an affine transform:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | 0  0  0  1  |
type Mat4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[0][3] = v.X
	m[1][3] = v.Y
	m[2][3] = v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0][0] = v.X
	m[1][1] = v.Y
	m[2][2] = v.Z
	return m
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Row returns row i.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i][0], m[i][1], m[i][2], m[i][3]}
}

// Col returns column j.
func (m Mat4) Col(j int) Vec4 {
	return Vec4{m[0][j], m[1][j], m[2][j], m[3][j]}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row][k] * b[k][col]
			}
			m[row][col] = sum
		}
	}
	return m
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3]*v.W,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3]*v.W,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3]*v.W,
		m[3][0]*v.X + m[3][1]*v.Y + m[3][2]*v.Z + m[3][3]*v.W,
	}
}

// MulVec3 transforms a Vec3 as a point: it is promoted to w=1, multiplied,
// and divided by the resulting w. Fails with ErrPointAtInfinity when w≈0.
func (m Mat4) MulVec3(v Vec3) (Vec3, error) {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulDir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col][row] = m[row][col]
		}
	}
	return t
}

// Minor returns the 3x3 matrix left after deleting row and col.
func (m Mat4) Minor(row, col int) Mat3 {
	var r Mat3
	ri := 0
	for i := range 4 {
		if i == row {
			continue
		}
		ci := 0
		for j := range 4 {
			if j == col {
				continue
			}
			r[ri][ci] = m[i][j]
			ci++
		}
		ri++
	}
	return r
}

// Cofactor returns the signed minor determinant of element (row, col).
func (m Mat4) Cofactor(row, col int) float64 {
	det := m.Minor(row, col).Determinant()
	if (row+col)%2 == 1 {
		return -det
	}
	return det
}

// Determinant returns the determinant by cofactor expansion along row 0.
func (m Mat4) Determinant() float64 {
	var det float64
	for col := range 4 {
		det += m[0][col] * m.Cofactor(0, col)
	}
	return det
}

// Adjugate returns the transpose of the cofactor matrix.
func (m Mat4) Adjugate() Mat4 {
	var adj Mat4
	for row := range 4 {
		for col := range 4 {
			adj[col][row] = m.Cofactor(row, col)
		}
	}
	return adj
}

// Inverse returns adjugate / determinant.
// A singular matrix is reported as ErrSingular, never as a NaN matrix.
func (m Mat4) Inverse() (Mat4, error) {
	adj := m.Adjugate()

	// Row 0 of m dotted with column 0 of adj is the determinant, which
	// saves a second expansion.
	det := m[0][0]*adj[0][0] + m[0][1]*adj[1][0] + m[0][2]*adj[2][0] + m[0][3]*adj[3][0]
	bound := 1.0
	for row := range 4 {
		bound *= math.Sqrt(m[row][0]*m[row][0] + m[row][1]*m[row][1] + m[row][2]*m[row][2] + m[row][3]*m[row][3])
	}
	if singular(det, bound) {
		return Mat4{}, ErrSingular
	}

	inv := 1 / det
	for row := range 4 {
		for col := range 4 {
			adj[row][col] *= inv
		}
	}
	return adj, nil
}

// singular reports whether det is negligible next to bound, the product
// of the row lengths and so the largest |det| those rows allow.
func singular(det, bound float64) bool {
	return !(math.Abs(det) > SingularEpsilon*bound) || math.IsInf(1/det, 0)
}

// InverseTranspose returns (m⁻¹)ᵀ, the matrix that carries normals
// through m.
func (m Mat4) InverseTranspose() (Mat4, error) {
	inv, err := m.Inverse()
	if err != nil {
		return Mat4{}, err
	}
	return inv.Transpose(), nil
}

// ApproxEqual reports whether every element of a and b differs by at most eps.
func (a Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for row := range 4 {
		for col := range 4 {
			if math.Abs(a[row][col]-b[row][col]) > eps {
				return false
			}
		}
	}
	return true
}
