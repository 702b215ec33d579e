package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/haywire/pkg/models"
)

// ErrUnknownMesh is returned when an object references a mesh handle the
// scene does not hold.
var ErrUnknownMesh = errors.New("unknown mesh")

// MeshID is a handle into Scene.Meshes.
type MeshID int

// GameObject places a shared mesh in the world with its own pose.
type GameObject struct {
	Name      string
	Mesh      MeshID
	Transform ModelMatrix

	// Hidden objects are skipped by DrawScene.
	Hidden bool
}

// Scene holds the mesh arena, the objects that reference it, and the camera.
// Objects draw in slice order.
type Scene struct {
	Meshes  []*models.Mesh
	Objects []*GameObject
	Camera  *Camera
}

// NewScene creates an empty scene viewed through camera. A nil camera is
// replaced with NewCamera().
func NewScene(camera *Camera) *Scene {
	if camera == nil {
		camera = NewCamera()
	}
	return &Scene{Camera: camera}
}

// AddMesh validates m and appends it to the arena.
func (s *Scene) AddMesh(m *models.Mesh) (MeshID, error) {
	if m == nil {
		return -1, fmt.Errorf("add mesh: %w", ErrUnknownMesh)
	}
	if err := m.Validate(); err != nil {
		return -1, fmt.Errorf("add mesh: %w", err)
	}
	s.Meshes = append(s.Meshes, m)
	return MeshID(len(s.Meshes) - 1), nil
}

// Mesh returns the mesh for id, if the arena holds one there.
func (s *Scene) Mesh(id MeshID) (*models.Mesh, bool) {
	if id < 0 || int(id) >= len(s.Meshes) {
		return nil, false
	}
	m := s.Meshes[id]
	return m, m != nil
}

// AddObject places mesh id in the scene with the given pose.
func (s *Scene) AddObject(name string, id MeshID, transform ModelMatrix) (*GameObject, error) {
	if _, ok := s.Mesh(id); !ok {
		return nil, fmt.Errorf("object %q: %w: %d", name, ErrUnknownMesh, id)
	}
	obj := &GameObject{Name: name, Mesh: id, Transform: transform}
	s.Objects = append(s.Objects, obj)
	return obj, nil
}

// Object returns the first object with the given name.
func (s *Scene) Object(name string) (*GameObject, bool) {
	for _, obj := range s.Objects {
		if obj.Name == name {
			return obj, true
		}
	}
	return nil, false
}

// TriangleCount returns the number of triangles submitted per frame by the
// visible objects.
func (s *Scene) TriangleCount() int {
	total := 0
	for _, obj := range s.Objects {
		if m, ok := s.Mesh(obj.Mesh); ok && !obj.Hidden {
			total += m.TriangleCount()
		}
	}
	return total
}

// Validate checks the camera, every mesh, and every mesh reference.
func (s *Scene) Validate() error {
	if s.Camera == nil {
		return fmt.Errorf("%w: scene has no camera", ErrInvalidCamera)
	}
	if err := s.Camera.Validate(); err != nil {
		return err
	}
	for i, m := range s.Meshes {
		if m == nil {
			return fmt.Errorf("mesh %d: %w: nil entry", i, ErrUnknownMesh)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
	}
	for i, obj := range s.Objects {
		if _, ok := s.Mesh(obj.Mesh); !ok {
			return fmt.Errorf("object %d %q: %w: %d", i, obj.Name, ErrUnknownMesh, obj.Mesh)
		}
	}
	return nil
}
