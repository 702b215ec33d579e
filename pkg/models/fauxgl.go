package models

import (
	"fmt"
	"path/filepath"

	"github.com/fogleman/fauxgl"
	"github.com/taigrr/haywire/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	fm, err := fauxgl.LoadOBJ(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	return fromFauxGL(filepath.Base(path), fm), nil
}

// LoadSTL loads an ASCII or binary STL file.
func LoadSTL(path string) (*Mesh, error) {
	fm, err := fauxgl.LoadSTL(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	return fromFauxGL(filepath.Base(path), fm), nil
}

type weldKey struct {
	position fauxgl.Vector
	normal   fauxgl.Vector
}

// fromFauxGL welds fauxgl's triangle soup into an indexed mesh. Corners that
// share both position and normal become one vertex. If any corner lacks a
// normal the mesh is returned without normals so shading falls back to face
// normals.
func fromFauxGL(name string, fm *fauxgl.Mesh) *Mesh {
	mesh := NewMesh(name)
	seen := make(map[weldKey]int, len(fm.Triangles)*3)
	hasNormals := true

	var zero fauxgl.Vector
	for _, t := range fm.Triangles {
		for _, v := range [3]fauxgl.Vertex{t.V1, t.V2, t.V3} {
			if v.Normal == zero {
				hasNormals = false
			}

			key := weldKey{position: v.Position, normal: v.Normal}
			idx, ok := seen[key]
			if !ok {
				idx = len(mesh.Vertices)
				seen[key] = idx
				mesh.Vertices = append(mesh.Vertices, math3d.Point(v.Position.X, v.Position.Y, v.Position.Z))
				mesh.Normals = append(mesh.Normals, math3d.Direction(v.Normal.X, v.Normal.Y, v.Normal.Z))
			}
			mesh.Indices = append(mesh.Indices, idx)
		}
	}

	if !hasNormals {
		mesh.Normals = nil
	}
	return mesh
}
