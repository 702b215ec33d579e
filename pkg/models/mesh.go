// Package models provides mesh representation and loading for haywire.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/haywire/pkg/math3d"
)

// Geometry validation errors.
var (
	ErrIndexCount  = errors.New("index count is not a multiple of 3")
	ErrIndexRange  = errors.New("index out of range")
	ErrNormalCount = errors.New("normal count does not match vertex count")
	ErrZeroNormal  = errors.New("zero-length normal")
)

// Mesh is indexed triangle geometry. Meshes are loaded once and treated as
// read-only; any number of scene objects may reference the same Mesh.
type Mesh struct {
	Name string

	// Vertices are object-space positions with W=1.
	Vertices []math3d.Vec4

	// Normals is either empty or parallel to Vertices, W=math3d.NormalW.
	Normals []math3d.Vec4

	// Indices groups every 3 consecutive entries into one triangle.
	Indices []int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Validate checks the index and normal invariants. Rendering assumes a
// mesh that passed validation.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %w (%d indices)", m.Name, ErrIndexCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("mesh %q: %w: indices[%d]=%d, %d vertices", m.Name, ErrIndexRange, i, idx, len(m.Vertices))
		}
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh %q: %w (%d normals, %d vertices)", m.Name, ErrNormalCount, len(m.Normals), len(m.Vertices))
	}
	for i, n := range m.Normals {
		if n.X == 0 && n.Y == 0 && n.Z == 0 {
			return fmt.Errorf("mesh %q: %w at vertex %d", m.Name, ErrZeroNormal, i)
		}
	}
	return nil
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// HasNormals reports whether the mesh carries per-vertex normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0
}

// Triangle returns the three vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]int {
	return [3]int{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Bounds returns the object-space axis-aligned bounding box.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	if len(m.Vertices) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}

	min = m.Vertices[0].Vec3()
	max = min
	for _, v := range m.Vertices[1:] {
		min = min.Min(v.Vec3())
		max = max.Max(v.Vec3())
	}
	return min, max
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	min, max := m.Bounds()
	return min.Add(max).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	min, max := m.Bounds()
	return max.Sub(min)
}

// FitScale returns the uniform scale and offset that center the mesh at the
// origin and fit its largest dimension into extent units. Apply as
// scale * (v + offset).
func (m *Mesh) FitScale(extent float64) (scale float64, offset math3d.Vec3) {
	offset = m.Center().Negate()
	maxDim := m.Size().MaxComponent()
	if maxDim <= 0 {
		return 1, offset
	}
	return extent / maxDim, offset
}

// Fitted returns a copy of m centered at the origin with its largest
// dimension scaled to extent. Normals are shared with m since a uniform
// scale does not change their direction.
func (m *Mesh) Fitted(extent float64) *Mesh {
	scale, offset := m.FitScale(extent)
	out := &Mesh{
		Name:     m.Name,
		Vertices: make([]math3d.Vec4, len(m.Vertices)),
		Normals:  m.Normals,
		Indices:  m.Indices,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = math3d.V4FromV3(v.Vec3().Add(offset).Scale(scale), 1)
	}
	return out
}
