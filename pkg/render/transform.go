package render

import "github.com/taigrr/haywire/pkg/math3d"

// ModelMatrix is a translate/rotate/scale pose. The matrix is derived on
// every call and never cached, so mutating a field is always reflected in
// the next frame.
type ModelMatrix struct {
	Translation math3d.Vec3

	// Rotation holds Euler angles in radians, composed as Rz·Ry·Rx.
	Rotation math3d.Vec3

	Scale math3d.Vec3
}

// NewModelMatrix returns the identity pose (unit scale).
func NewModelMatrix() ModelMatrix {
	return ModelMatrix{Scale: math3d.One3()}
}

// RotationMatrix returns the rotation part of the pose.
func (m ModelMatrix) RotationMatrix() math3d.Mat4 {
	return math3d.EulerToMatrix(m.Rotation.X, m.Rotation.Y, m.Rotation.Z)
}

// Matrix returns Rotation·Scale with the translation in column 3.
func (m ModelMatrix) Matrix() math3d.Mat4 {
	r := m.RotationMatrix()
	s := [3]float64{m.Scale.X, m.Scale.Y, m.Scale.Z}
	for row := range 3 {
		for col := range 3 {
			r[row][col] *= s[col]
		}
	}
	r.SetTranslation(m.Translation)
	return r
}

// InverseNeededForNormals reports whether the scale is non-uniform, in which
// case the model matrix does not preserve normal directions.
func (m ModelMatrix) InverseNeededForNormals() bool {
	return m.Scale.X != m.Scale.Y || m.Scale.Y != m.Scale.Z
}

// NormalMatrix returns the matrix that carries object-space normals to world
// space. With uniform scale that is the model matrix itself (normals are
// renormalized after interpolation). Otherwise it is the inverse-transpose;
// a singular pose (a zero scale axis) falls back to the model matrix and
// reports ok=false.
func (m ModelMatrix) NormalMatrix() (nm math3d.Mat4, ok bool) {
	model := m.Matrix()
	if !m.InverseNeededForNormals() {
		return model, true
	}
	model.SetTranslation(math3d.Zero3())
	inv, ok := model.Inverse()
	if !ok {
		return m.Matrix(), false
	}
	return inv.Transpose(), true
}
