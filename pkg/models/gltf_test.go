package models

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func writeTestGLB(t *testing.T, withNormals bool) string {
	t.Helper()

	doc := gltf.NewDocument()
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	attrs := map[string]int{
		gltf.POSITION: modeler.WritePosition(doc, positions),
	}
	if withNormals {
		normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
	}
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})

	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: attrs,
		}},
	}}

	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestGLTFLoaderWithNormals(t *testing.T) {
	mesh, err := LoadGLB(writeTestGLB(t, true))
	if err != nil {
		t.Fatalf("LoadGLB() error = %v", err)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("mesh invalid: %v", err)
	}
	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Errorf("got %d vertices, %d triangles; want 4, 2", mesh.VertexCount(), mesh.TriangleCount())
	}
	if !mesh.HasNormals() {
		t.Fatal("expected normals")
	}
	if n := mesh.Normals[3]; n.Z != 1 {
		t.Errorf("normal[3] = %v, want +Z", n)
	}
	// winding is kept as stored
	if tri := mesh.Triangle(1); tri != [3]int{2, 1, 3} {
		t.Errorf("Triangle(1) = %v, want [2 1 3]", tri)
	}
}

func TestGLTFLoaderWithoutNormals(t *testing.T) {
	mesh, err := LoadGLB(writeTestGLB(t, false))
	if err != nil {
		t.Fatalf("LoadGLB() error = %v", err)
	}
	if mesh.HasNormals() {
		t.Error("mesh without NORMAL attribute should have no normals")
	}
}

func TestGLTFLoaderSkipNormals(t *testing.T) {
	l := &GLTFLoader{SkipNormals: true}
	mesh, err := l.Load(writeTestGLB(t, true))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if mesh.HasNormals() {
		t.Error("SkipNormals should drop normals")
	}
}

func saveGLB(t *testing.T, doc *gltf.Document, attrs map[string]int, indices []uint16) string {
	t.Helper()
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: attrs,
		}},
	}}
	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestGLTFLoaderSparsePositions(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})

	// Displace vertex 3 through a sparse substitution.
	doc.Accessors[pos].Sparse = &gltf.Sparse{
		Count: 1,
		Indices: gltf.SparseIndices{
			BufferView:    modeler.WriteBufferView(doc, gltf.TargetNone, []uint16{3}),
			ComponentType: gltf.ComponentUshort,
		},
		Values: gltf.SparseValues{
			BufferView: modeler.WriteBufferView(doc, gltf.TargetNone, [][3]float32{{2, 2, 0}}),
		},
	}

	mesh, err := LoadGLB(saveGLB(t, doc, map[string]int{gltf.POSITION: pos}, []uint16{0, 1, 2, 2, 1, 3}))
	if err != nil {
		t.Fatalf("LoadGLB() error = %v", err)
	}
	if v := mesh.Vertices[3]; v.X != 2 || v.Y != 2 {
		t.Errorf("vertex 3 = %v, want sparse value (2, 2, 0)", v)
	}
	if v := mesh.Vertices[1]; v.X != 1 || v.Y != 0 {
		t.Errorf("vertex 1 = %v, want (1, 0, 0)", v)
	}
}

func TestGLTFLoaderInterleaved(t *testing.T) {
	doc := gltf.NewDocument()
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, -1}}
	acrs, err := modeler.WriteAccessorsInterleaved(doc, positions, normals)
	if err != nil {
		t.Fatalf("WriteAccessorsInterleaved: %v", err)
	}

	mesh, err := LoadGLB(saveGLB(t, doc, map[string]int{gltf.POSITION: acrs[0], gltf.NORMAL: acrs[1]}, []uint16{0, 1, 2}))
	if err != nil {
		t.Fatalf("LoadGLB() error = %v", err)
	}
	if !mesh.HasNormals() {
		t.Fatal("expected normals")
	}
	if v := mesh.Vertices[3]; v.X != 1 || v.Y != 1 {
		t.Errorf("vertex 3 = %v, want (1, 1, 0)", v)
	}
	if n := mesh.Normals[3]; n.Z != -1 {
		t.Errorf("normal 3 = %v, want -Z", n)
	}
}

func TestGLTFLoaderDanglingAccessor(t *testing.T) {
	doc := gltf.NewDocument()
	if _, err := LoadGLB(saveGLB(t, doc, map[string]int{gltf.POSITION: 5}, []uint16{0, 1, 2})); err == nil {
		t.Error("expected an error for a POSITION accessor that does not exist")
	}
}
