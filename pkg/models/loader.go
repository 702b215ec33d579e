package models

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned alongside an empty mesh when no loader is
// registered for a file extension.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Loader parses one family of mesh files.
type Loader interface {
	Load(path string) (*Mesh, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(path string) (*Mesh, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*Mesh, error) {
	return f(path)
}

// Registry maps lower-case file extensions (".obj") to loaders.
type Registry struct {
	loaders map[string]Loader
	logger  *slog.Logger
}

// NewRegistry returns a registry with the built-in formats: glTF (.glb,
// .gltf) and Wavefront OBJ / STL (.obj, .stl).
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		loaders: make(map[string]Loader),
		logger:  logger,
	}

	gltfLoader := NewGLTFLoader()
	r.Register(".glb", gltfLoader)
	r.Register(".gltf", gltfLoader)

	r.Register(".obj", LoaderFunc(LoadOBJ))
	r.Register(".stl", LoaderFunc(LoadSTL))
	return r
}

// Register binds ext to l, replacing any previous loader.
func (r *Registry) Register(ext string, l Loader) {
	r.loaders[normalizeExt(ext)] = l
}

// Lookup returns the loader registered for ext.
func (r *Registry) Lookup(ext string) (Loader, bool) {
	l, ok := r.loaders[normalizeExt(ext)]
	return l, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load picks a loader by the file extension of path and validates the
// result. An unknown extension is logged and yields an empty mesh together
// with an error wrapping ErrUnsupportedFormat, so callers may either degrade
// to the empty mesh or abort.
func (r *Registry) Load(path string) (*Mesh, error) {
	ext := normalizeExt(filepath.Ext(path))
	l, ok := r.loaders[ext]
	if !ok {
		r.logger.Warn("cannot load mesh type", "path", path, "ext", ext, "supported", r.Extensions())
		return NewMesh(filepath.Base(path)), fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	mesh, err := l.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	r.logger.Debug("loaded mesh",
		"path", path,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"normals", mesh.HasNormals(),
	)
	return mesh, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
