package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/haywire/pkg/math3d"
)

func triangleMesh() *Mesh {
	m := NewMesh("tri")
	m.Vertices = []math3d.Vec4{
		math3d.Point(0, 0, 0),
		math3d.Point(1, 0, 0),
		math3d.Point(0, 1, 0),
	}
	m.Indices = []int{0, 1, 2}
	return m
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr error
	}{
		{"valid", func(m *Mesh) {}, nil},
		{"valid with normals", func(m *Mesh) {
			m.Normals = []math3d.Vec4{math3d.Direction(0, 0, 1), math3d.Direction(0, 0, 1), math3d.Direction(0, 0, 1)}
		}, nil},
		{"empty", func(m *Mesh) { m.Vertices = nil; m.Indices = nil }, nil},
		{"index count", func(m *Mesh) { m.Indices = []int{0, 1} }, ErrIndexCount},
		{"index too large", func(m *Mesh) { m.Indices = []int{0, 1, 3} }, ErrIndexRange},
		{"negative index", func(m *Mesh) { m.Indices = []int{0, -1, 2} }, ErrIndexRange},
		{"normal count", func(m *Mesh) { m.Normals = []math3d.Vec4{math3d.Direction(0, 0, 1)} }, ErrNormalCount},
		{"zero normal", func(m *Mesh) {
			m.Normals = []math3d.Vec4{math3d.Direction(0, 0, 1), math3d.Direction(0, 0, 0), math3d.Direction(0, 0, 1)}
		}, ErrZeroNormal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := triangleMesh()
			tc.mutate(m)
			err := m.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestMeshBoundsAndFit(t *testing.T) {
	m := NewMesh("box")
	m.Vertices = []math3d.Vec4{
		math3d.Point(-1, 2, 0),
		math3d.Point(3, 4, 1),
		math3d.Point(1, 3, 0.5),
	}

	min, max := m.Bounds()
	if min != math3d.V3(-1, 2, 0) || max != math3d.V3(3, 4, 1) {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
	if c := m.Center(); c != math3d.V3(1, 3, 0.5) {
		t.Errorf("Center() = %v, want (1, 3, 0.5)", c)
	}

	scale, offset := m.FitScale(2)
	if math.Abs(scale-0.5) > 1e-12 {
		t.Errorf("FitScale scale = %v, want 0.5 (largest dimension is 4)", scale)
	}
	if offset != math3d.V3(-1, -3, -0.5) {
		t.Errorf("FitScale offset = %v", offset)
	}

	empty := NewMesh("empty")
	if s, _ := empty.FitScale(2); s != 1 {
		t.Errorf("FitScale on empty mesh = %v, want 1", s)
	}

	fitted := m.Fitted(2)
	lo, hi := fitted.Bounds()
	if lo != math3d.V3(-1, -0.5, -0.25) || hi != math3d.V3(1, 0.5, 0.25) {
		t.Errorf("Fitted bounds = %v, %v", lo, hi)
	}
	if m.Vertices[0] != math3d.Point(-1, 2, 0) {
		t.Error("Fitted modified the source mesh")
	}
}

func TestCube(t *testing.T) {
	c := Cube(2)
	if err := c.Validate(); err != nil {
		t.Fatalf("cube invalid: %v", err)
	}
	if c.TriangleCount() != 12 || c.VertexCount() != 24 {
		t.Errorf("cube has %d triangles, %d vertices; want 12, 24", c.TriangleCount(), c.VertexCount())
	}
	if !c.HasNormals() {
		t.Fatal("cube should carry normals")
	}

	// every triangle winds counter-clockwise around its outward normal
	for i := range c.TriangleCount() {
		tri := c.Triangle(i)
		p0 := c.Vertices[tri[0]].Vec3()
		p1 := c.Vertices[tri[1]].Vec3()
		p2 := c.Vertices[tri[2]].Vec3()
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		n := c.Normals[tri[0]].Vec3()
		if face.Dot(n) <= 0 {
			t.Errorf("triangle %d winds against its normal %v", i, n)
		}
		if face.Dot(p0) <= 0 {
			t.Errorf("triangle %d faces inward", i)
		}
	}

	min, max := c.Bounds()
	if min != math3d.V3(-1, -1, -1) || max != math3d.V3(1, 1, 1) {
		t.Errorf("cube bounds = %v, %v", min, max)
	}
}
