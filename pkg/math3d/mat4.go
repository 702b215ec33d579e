package math3d

import "math"

// Mat4 is a 4x4 matrix stored row-major: m[row][col].
//
// Matrices act on column vectors, so A.Mul(B) applied to v applies B first.
// A transform matrix is laid out as:
//
//	| Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
//	| Xy Yy Zy Ty |   T = translation
//	| Xz Yz Zz Tz |
//	| 0  0  0  1  |
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

// Zero returns the matrix with every element zero.
func Zero() Mat4 {
	return Mat4{}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		{1, 0, 0, v.X},
		{0, 1, 0, v.Y},
		{0, 0, 1, v.Z},
		{0, 0, 0, 1},
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		{v.X, 0, 0, 0},
		{0, v.Y, 0, 0},
		{0, 0, v.Z, 0},
		{0, 0, 0, 1},
	}
}

// RotateX creates a counter-clockwise rotation around the X axis.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateY creates a counter-clockwise rotation around the Y axis.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateZ creates a counter-clockwise rotation around the Z axis.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// EulerToMatrix returns the rotation Rz(z)·Ry(y)·Rx(x): a vector is rotated
// about X first, then Y, then Z. It is equivalent to
// RotateZ(z).Mul(RotateY(y)).Mul(RotateX(x)) but built directly from the
// combined sine/cosine products.
func EulerToMatrix(x, y, z float64) Mat4 {
	sx, cx := math.Sincos(x)
	sy, cy := math.Sincos(y)
	sz, cz := math.Sincos(z)

	return Mat4{
		{cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx, 0},
		{sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx, 0},
		{-sy, cy * sx, cy * cx, 0},
		{0, 0, 0, 1},
	}
}

// Perspective creates a right-handed perspective projection (camera looks
// down -Z). fovy is the full vertical field of view in radians and aspect is
// width/height. The clip-space W of a projected point equals -z_view.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	tanHalf := math.Tan(fovy / 2)

	m := Zero()
	m[0][0] = 1 / (aspect * tanHalf)
	m[1][1] = 1 / tanHalf
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -(2 * far * near) / (far - near)
	m[3][2] = -1
	return m
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

// MulPoint transforms a Vec3 as an affine point (w=1, no divide).
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3],
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3],
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3],
	}
}

// MulDir transforms a Vec3 as a direction (no translation).
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

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	a, ok := m.eliminate()
	if !ok {
		return 0
	}
	return a.det
}

// Inverse returns the inverse of the matrix and whether it exists.
// A singular matrix yields the identity and false.
func (m Mat4) Inverse() (Mat4, bool) {
	a, ok := m.eliminate()
	if !ok {
		return Identity(), false
	}
	return a.inv, true
}

type elimination struct {
	inv Mat4
	det float64
}

// eliminate runs Gauss-Jordan elimination with partial pivoting.
func (m Mat4) eliminate() (elimination, bool) {
	a := m
	inv := Identity()
	det := 1.0

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return elimination{}, false
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			inv[pivot], inv[col] = inv[col], inv[pivot]
			det = -det
		}

		p := a[col][col]
		det *= p
		for k := range 4 {
			a[col][k] /= p
			inv[col][k] /= p
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := a[row][col]
			if f == 0 {
				continue
			}
			for k := range 4 {
				a[row][k] -= f * a[col][k]
				inv[row][k] -= f * inv[col][k]
			}
		}
	}

	return elimination{inv: inv, det: det}, true
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}

// SetTranslation sets the translation component.
func (m *Mat4) SetTranslation(v Vec3) {
	m[0][3] = v.X
	m[1][3] = v.Y
	m[2][3] = v.Z
}

// ApproxEqual reports whether every element of a and b differs by at most eps.
func (m Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for row := range 4 {
		for col := range 4 {
			if math.Abs(m[row][col]-b[row][col]) > eps {
				return false
			}
		}
	}
	return true
}
