package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/haywire/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// SkipNormals ignores NORMAL attributes so shading uses face normals.
	SkipNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{}
}

// LoadGLB loads a binary GLTF (.glb) file with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and merges every triangle primitive of
// every mesh into one Mesh. glTF front faces wind counter-clockwise, which
// is also the rasterizer's convention, so indices are kept as stored.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	withNormals := !l.SkipNormals

	for _, m := range doc.Meshes {
		ok, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		withNormals = withNormals && ok
	}

	// Normals are all-or-nothing per Mesh.
	if !withNormals {
		mesh.Normals = nil
	}
	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh. It reports
// whether every appended primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	allNormals := true

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, strips)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readPositions(doc, posIdx)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok && !l.SkipNormals {
			normals, err = readNormals(doc, normIdx)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		}
		if len(normals) != len(positions) {
			allNormals = false
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			mesh.Vertices = append(mesh.Vertices, math3d.Point(float64(p[0]), float64(p[1]), float64(p[2])))
			if i < len(normals) {
				n := normals[i]
				mesh.Normals = append(mesh.Normals, math3d.Direction(float64(n[0]), float64(n[1]), float64(n[2])))
			} else {
				mesh.Normals = append(mesh.Normals, math3d.Direction(0, 0, 0))
			}
		}

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
			for _, idx := range indices {
				mesh.Indices = append(mesh.Indices, baseVertex+idx)
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Indices = append(mesh.Indices, baseVertex+i, baseVertex+i+1, baseVertex+i+2)
			}
		}
	}

	return allNormals, nil
}

// accessor returns the accessor at idx, or an error for a dangling
// reference.
func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// readPositions reads a POSITION accessor, sparse or interleaved.
func readPositions(doc *gltf.Document, idx int) ([][3]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	return modeler.ReadPosition(doc, acr, nil)
}

// readNormals reads a NORMAL accessor, sparse or interleaved.
func readNormals(doc *gltf.Document, idx int) ([][3]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	return modeler.ReadNormal(doc, acr, nil)
}

// readIndices reads a scalar index accessor of any unsigned width.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadIndices(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	indices := make([]int, len(raw))
	for i, v := range raw {
		indices[i] = int(v)
	}
	return indices, nil
}
