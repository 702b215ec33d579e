package models

import "github.com/taigrr/haywire/pkg/math3d"

// Cube returns an axis-aligned cube of the given edge length centered at the
// origin. Each face has its own four vertices so the normals stay flat, and
// every triangle winds counter-clockwise when viewed from outside.
func Cube(size float64) *Mesh {
	h := size / 2

	faces := []struct {
		normal  math3d.Vec3
		corners [4]math3d.Vec3
	}{
		{math3d.V3(0, 0, 1), [4]math3d.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},     // front
		{math3d.V3(0, 0, -1), [4]math3d.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}}, // back
		{math3d.V3(1, 0, 0), [4]math3d.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},     // right
		{math3d.V3(-1, 0, 0), [4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}}, // left
		{math3d.V3(0, 1, 0), [4]math3d.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},     // top
		{math3d.V3(0, -1, 0), [4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}}, // bottom
	}

	mesh := NewMesh("cube")
	for _, f := range faces {
		base := len(mesh.Vertices)
		for _, c := range f.corners {
			mesh.Vertices = append(mesh.Vertices, math3d.V4FromV3(c, 1))
			mesh.Normals = append(mesh.Normals, math3d.V4FromV3(f.normal, math3d.NormalW))
		}
		mesh.Indices = append(mesh.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	return mesh
}
