package render

import (
	"math"
	"testing"

	"github.com/taigrr/haywire/pkg/math3d"
)

func TestModelMatrixComposition(t *testing.T) {
	m := ModelMatrix{
		Translation: math3d.V3(1, -2, 3),
		Rotation:    math3d.V3(0.3, -0.7, 1.1),
		Scale:       math3d.V3(2, 0.5, 3),
	}
	want := math3d.Translate(m.Translation).
		Mul(math3d.EulerToMatrix(0.3, -0.7, 1.1)).
		Mul(math3d.Scale(m.Scale))

	if got := m.Matrix(); !got.ApproxEqual(want, 1e-12) {
		t.Errorf("Matrix() =\n%v\nwant\n%v", got, want)
	}
}

func TestModelMatrixIdentity(t *testing.T) {
	if got := NewModelMatrix().Matrix(); !got.ApproxEqual(math3d.Identity(), 0) {
		t.Errorf("identity pose = %v", got)
	}
}

func TestModelMatrixNotCached(t *testing.T) {
	m := NewModelMatrix()
	before := m.Matrix()
	m.Translation = math3d.V3(5, 0, 0)
	after := m.Matrix()
	if before.ApproxEqual(after, 0) {
		t.Error("Matrix() did not reflect the new translation")
	}
	if after[0][3] != 5 {
		t.Errorf("translation column = %v, want 5", after[0][3])
	}
}

func TestInverseNeededForNormals(t *testing.T) {
	tests := []struct {
		scale math3d.Vec3
		want  bool
	}{
		{math3d.V3(1, 1, 1), false},
		{math3d.V3(3, 3, 3), false},
		{math3d.V3(-2, -2, -2), false},
		{math3d.V3(1, 2, 1), true},
		{math3d.V3(1, 1, 2), true},
		{math3d.V3(2, 1, 1), true},
	}
	for _, tc := range tests {
		m := ModelMatrix{Scale: tc.scale}
		if got := m.InverseNeededForNormals(); got != tc.want {
			t.Errorf("scale %v: got %v, want %v", tc.scale, got, tc.want)
		}
	}
}

func TestNormalMatrixKeepsNormalsPerpendicular(t *testing.T) {
	m := ModelMatrix{
		Translation: math3d.V3(4, 5, 6),
		Rotation:    math3d.V3(0.4, 0.2, -0.9),
		Scale:       math3d.V3(1, 4, 0.5),
	}
	nm, ok := m.NormalMatrix()
	if !ok {
		t.Fatal("NormalMatrix reported singular pose")
	}
	model := m.Matrix()

	// A sloped surface: two tangents and their normal.
	t1 := math3d.V3(1, 1, 0)
	t2 := math3d.V3(0, 1, 1)
	n := t1.Cross(t2)

	wn := nm.MulDir(n)
	for _, tangent := range []math3d.Vec3{t1, t2} {
		wt := model.MulDir(tangent)
		if d := wn.Dot(wt); math.Abs(d) > 1e-9 {
			t.Errorf("normal·tangent = %v after transform, want 0", d)
		}
	}

	// The direct matrix would not keep them perpendicular.
	if d := model.MulDir(n).Dot(model.MulDir(t1)); math.Abs(d) < 1e-3 {
		t.Errorf("expected the model matrix to skew normals, dot = %v", d)
	}
}

func TestNormalMatrixSingular(t *testing.T) {
	m := ModelMatrix{Scale: math3d.V3(1, 0, 1)}
	nm, ok := m.NormalMatrix()
	if ok {
		t.Error("zero scale axis should report ok=false")
	}
	if !nm.ApproxEqual(m.Matrix(), 0) {
		t.Error("singular fallback should be the model matrix")
	}
}
