package math3d

import "math"

// Mat3 is a 3x3 matrix stored row-major: m[row][col].
type Mat3 [3][3]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mat3FromRows builds a matrix whose rows are r0, r1, r2.
func Mat3FromRows(r0, r1, r2 Vec3) Mat3 {
	return Mat3{
		{r0.X, r0.Y, r0.Z},
		{r1.X, r1.Y, r1.Z},
		{r2.X, r2.Y, r2.Z},
	}
}

// Mat3FromCols builds a matrix whose columns are c0, c1, c2.
func Mat3FromCols(c0, c1, c2 Vec3) Mat3 {
	return Mat3FromRows(c0, c1, c2).Transpose()
}

// Row returns row i.
func (m Mat3) Row(i int) Vec3 {
	return Vec3{m[i][0], m[i][1], m[i][2]}
}

// Col returns column j.
func (m Mat3) Col(j int) Vec3 {
	return Vec3{m[0][j], m[1][j], m[2][j]}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat3) Mul(b Mat3) Mat3 {
	var m Mat3
	for row := range 3 {
		for col := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[row][k] * b[k][col]
			}
			m[row][col] = sum
		}
	}
	return m
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for row := range 3 {
		for col := range 3 {
			t[col][row] = m[row][col]
		}
	}
	return t
}

// Determinant returns the determinant, expanded along the first row.
func (m Mat3) Determinant() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Cofactor returns the signed minor of element (row, col).
func (m Mat3) Cofactor(row, col int) float64 {
	var minor [4]float64
	n := 0
	for i := range 3 {
		if i == row {
			continue
		}
		for j := range 3 {
			if j == col {
				continue
			}
			minor[n] = m[i][j]
			n++
		}
	}
	det := minor[0]*minor[3] - minor[1]*minor[2]
	if (row+col)%2 == 1 {
		return -det
	}
	return det
}

// Adjugate returns the transpose of the cofactor matrix.
func (m Mat3) Adjugate() Mat3 {
	var adj Mat3
	for row := range 3 {
		for col := range 3 {
			adj[col][row] = m.Cofactor(row, col)
		}
	}
	return adj
}

// Inverse returns adjugate / determinant, or ErrSingular.
func (m Mat3) Inverse() (Mat3, error) {
	det := m.Determinant()
	bound := 1.0
	for row := range 3 {
		bound *= math.Sqrt(m[row][0]*m[row][0] + m[row][1]*m[row][1] + m[row][2]*m[row][2])
	}
	if singular(det, bound) {
		return Mat3{}, ErrSingular
	}
	adj := m.Adjugate()
	inv := 1 / det
	for row := range 3 {
		for col := range 3 {
			adj[row][col] *= inv
		}
	}
	return adj, nil
}
