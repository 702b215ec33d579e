package render

import (
	"errors"
	"log/slog"
	"math"

	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/models"
)

// ErrEmptyPalette is returned by DrawScene when no colors are supplied.
var ErrEmptyPalette = errors.New("empty palette")

// AmbientFloor is the minimum light intensity of any lit pixel.
const AmbientFloor = 0.1

// guardBand bounds screen coordinates before integer truncation, keeping the
// edge-function products inside int64. Triangles reaching past it are
// clipped to it in clip space; truncate only absorbs rounding at the band.
const guardBand = 1 << 24

// Stats counts the work done since the last BeginFrame.
type Stats struct {
	ObjectsDrawn          int // Objects that passed frustum culling
	ObjectsCulled         int // Objects whose bounds were outside the frustum
	Triangles             int // Triangles submitted to the clipper
	TrianglesNearCulled   int // Triangles entirely behind the near plane
	TrianglesSplit        int // Triangles the clipper split in two
	TrianglesGuardClipped int // Triangles clipped to the guard band
	BackFacesCulled       int // Screen triangles with non-positive area
	TrianglesFilled       int // Screen triangles that reached the fill loop
	PixelsWritten         int // Pixels that passed the depth test
}

// Rasterizer draws scenes into a ColorBuffer and a DepthBuffer that it owns
// for the duration of each frame.
type Rasterizer struct {
	Color *ColorBuffer
	Depth *DepthBuffer

	// LightDir is the direction the single directional light travels.
	LightDir math3d.Vec3

	// DisableFrustumCulling draws every object even if its bounds are
	// outside the view. Output is identical either way.
	DisableFrustumCulling bool

	Stats Stats

	logger *slog.Logger

	// Objects already reported for non-uniform scale, reset per scene.
	reported     map[*GameObject]struct{}
	reportedFrom *Scene
}

// NewRasterizer creates a rasterizer with width x height buffers. A nil
// logger uses slog.Default().
func NewRasterizer(width, height int, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{
		Color:    NewColorBuffer(width, height),
		Depth:    NewDepthBuffer(width, height),
		LightDir: math3d.V3(0, 0, -1),
		logger:   logger,
	}
}

// Width returns the buffer width.
func (r *Rasterizer) Width() int { return r.Color.Width() }

// Height returns the buffer height.
func (r *Rasterizer) Height() int { return r.Color.Height() }

// BeginFrame resizes or clears both buffers and resets Stats. The color
// buffer always ends up filled with background, including after a resize.
func (r *Rasterizer) BeginFrame(width, height int, background Color) {
	resized := width != r.Width() || height != r.Height()
	r.Color.HandleResizeOrClear(width, height, background)
	if resized {
		r.Color.Clear(background)
	}
	r.Depth.HandleResizeOrClear(width, height)
	r.Stats = Stats{}
}

// DrawScene draws every visible object of scene, objects in slice order and
// triangles in index order. Triangle i of a mesh takes its base color from
// palette[i%len(palette)].
//
// The scene is checked before any pixel is touched; a returned error leaves
// the buffers as they were.
func (r *Rasterizer) DrawScene(scene *Scene, palette []Color) error {
	if len(palette) == 0 {
		return ErrEmptyPalette
	}
	if err := scene.Validate(); err != nil {
		return err
	}

	if r.reportedFrom != scene {
		r.reported = make(map[*GameObject]struct{})
		r.reportedFrom = scene
	}

	cam := scene.Camera
	viewProj := cam.ProjectionMatrix().Mul(cam.ViewMatrix())
	frustum := NewFrustumFromMatrix(viewProj)
	toLight := r.LightDir.Normalize().Negate()

	for _, obj := range scene.Objects {
		if obj.Hidden {
			continue
		}
		mesh, _ := scene.Mesh(obj.Mesh)
		r.drawObject(obj, mesh, viewProj, frustum, cam.Near, toLight, palette)
	}
	return nil
}

func (r *Rasterizer) drawObject(obj *GameObject, mesh *models.Mesh, viewProj math3d.Mat4, frustum Frustum, near float64, toLight math3d.Vec3, palette []Color) {
	model := obj.Transform.Matrix()

	if !r.DisableFrustumCulling && mesh.VertexCount() > 0 {
		lo, hi := mesh.Bounds()
		if !frustum.IntersectAABB(NewAABB(lo, hi).Transform(model)) {
			r.Stats.ObjectsCulled++
			return
		}
	}
	r.Stats.ObjectsDrawn++

	mvp := viewProj.Mul(model)

	normalMatrix := model
	if mesh.HasNormals() && obj.Transform.InverseNeededForNormals() {
		var ok bool
		normalMatrix, ok = obj.Transform.NormalMatrix()
		r.reportNonUniform(obj, ok)
	}

	for t := range mesh.TriangleCount() {
		idx := mesh.Triangle(t)

		var tri ClipTriangle
		for k, vi := range idx {
			tri[k].Position = mvp.MulVec4(mesh.Vertices[vi])
			if mesh.HasNormals() {
				tri[k].Normal = normalMatrix.MulDir(mesh.Normals[vi].Vec3())
			}
		}
		if !mesh.HasNormals() {
			n := faceNormal(model, mesh, idx)
			tri[0].Normal, tri[1].Normal, tri[2].Normal = n, n, n
		}

		r.drawTriangle(tri, near, toLight, palette[t%len(palette)])
	}
}

// faceNormal is the unnormalized cross product of two world-space edges.
func faceNormal(model math3d.Mat4, mesh *models.Mesh, idx [3]int) math3d.Vec3 {
	p0 := model.MulPoint(mesh.Vertices[idx[0]].Vec3())
	p1 := model.MulPoint(mesh.Vertices[idx[1]].Vec3())
	p2 := model.MulPoint(mesh.Vertices[idx[2]].Vec3())
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

func (r *Rasterizer) reportNonUniform(obj *GameObject, ok bool) {
	if _, seen := r.reported[obj]; seen {
		return
	}
	r.reported[obj] = struct{}{}
	if !ok {
		r.logger.Warn("singular model matrix, normals left untransformed by inverse",
			"object", obj.Name, "scale", obj.Transform.Scale)
		return
	}
	r.logger.Debug("non-uniform scale, using inverse-transpose for normals",
		"object", obj.Name, "scale", obj.Transform.Scale)
}

// DrawTriangle clips a clip-space triangle against near, maps the pieces to
// the viewport, and fills them with base shaded by the default light.
func (r *Rasterizer) DrawTriangle(tri ClipTriangle, near float64, base Color) {
	r.drawTriangle(tri, near, r.LightDir.Normalize().Negate(), base)
}

func (r *Rasterizer) drawTriangle(tri ClipTriangle, near float64, toLight math3d.Vec3, base Color) {
	r.Stats.Triangles++

	pieces, n := ClipNearPlane(tri, near)
	switch n {
	case 0:
		r.Stats.TrianglesNearCulled++
		return
	case 2:
		r.Stats.TrianglesSplit++
	}

	for _, piece := range pieces[:n] {
		if r.outsideGuardBand(piece) {
			r.Stats.TrianglesGuardClipped++
			poly := ClipGuardBand(piece, r.Width(), r.Height(), guardBand)
			for i := 1; i+1 < len(poly); i++ {
				r.fill([3]ScreenVertex{r.viewport(poly[0]), r.viewport(poly[i]), r.viewport(poly[i+1])}, toLight, base)
			}
			continue
		}

		var sv [3]ScreenVertex
		for k, v := range piece {
			sv[k] = r.viewport(v)
		}
		r.fill(sv, toLight, base)
	}
}

// outsideGuardBand reports whether any corner of tri maps more than
// guardBand pixels from the buffer origin.
func (r *Rasterizer) outsideGuardBand(tri ClipTriangle) bool {
	for _, v := range tri {
		ndc := v.Position.DivW()
		x := (ndc.X + 1) * 0.5 * float64(r.Width())
		y := (ndc.Y + 1) * 0.5 * float64(r.Height())
		if math.Abs(x) > guardBand || math.Abs(y) > guardBand {
			return true
		}
	}
	return false
}

// ScreenVertex is a vertex after the perspective divide and viewport
// transform. X and Y are whole pixels with row 0 at the bottom.
type ScreenVertex struct {
	X, Y int

	// Z is the depth in [0,1] for points between the near and far planes.
	Z float64

	// InvW is 1/w from clip space, used for perspective-correct normals.
	InvW float64

	Normal math3d.Vec3
}

// viewport maps a clip-space vertex (w > 0) to the buffer.
func (r *Rasterizer) viewport(v ClipVertex) ScreenVertex {
	ndc := v.Position.DivW()
	return ScreenVertex{
		X:      truncate((ndc.X + 1) * 0.5 * float64(r.Width())),
		Y:      truncate((ndc.Y + 1) * 0.5 * float64(r.Height())),
		Z:      (ndc.Z + 1) * 0.5,
		InvW:   1 / v.Position.W,
		Normal: v.Normal,
	}
}

func truncate(f float64) int {
	return int(math.Max(-guardBand, math.Min(guardBand, f)))
}

// FillTriangle fills a screen-space triangle with base shaded by the default
// light. It reports false when the triangle was back-face culled.
func (r *Rasterizer) FillTriangle(v [3]ScreenVertex, base Color) bool {
	return r.fill(v, r.LightDir.Normalize().Negate(), base)
}

// edgeFunction is twice the signed area of (a, b, p); positive when p is to
// the left of a→b.
func edgeFunction(ax, ay, bx, by, px, py int64) int64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func (r *Rasterizer) fill(v [3]ScreenVertex, toLight math3d.Vec3, base Color) bool {
	x0, y0 := int64(v[0].X), int64(v[0].Y)
	x1, y1 := int64(v[1].X), int64(v[1].Y)
	x2, y2 := int64(v[2].X), int64(v[2].Y)

	area := edgeFunction(x0, y0, x1, y1, x2, y2)
	if area <= 0 {
		r.Stats.BackFacesCulled++
		return false
	}
	r.Stats.TrianglesFilled++

	width, height := int64(r.Width()), int64(r.Height())
	minX := max(min(x0, x1, x2), 0)
	maxX := min(max(x0, x1, x2), width-1)
	minY := max(min(y0, y1, y2), 0)
	maxY := min(max(y0, y1, y2), height-1)
	if minX > maxX || minY > maxY {
		return true
	}

	// Edge values at the box corner and their per-pixel steps. Each edge
	// is opposite the vertex whose weight it carries.
	w0Row := edgeFunction(x1, y1, x2, y2, minX, minY)
	w1Row := edgeFunction(x2, y2, x0, y0, minX, minY)
	w2Row := edgeFunction(x0, y0, x1, y1, minX, minY)
	w0StepX, w0StepY := -(y2 - y1), x2-x1
	w1StepX, w1StepY := -(y0 - y2), x0-x2
	w2StepX, w2StepY := -(y1 - y0), x1-x0

	invArea := 1 / float64(area)

	// Equal normals (flat shading, or a mesh face with shared normals) give
	// one color for the whole triangle.
	flat := v[0].Normal == v[1].Normal && v[1].Normal == v[2].Normal
	var flatColor uint32
	if flat {
		flatColor = shade(v[0].Normal, toLight, base)
	}

	colors := r.Color.pixels
	depths := r.Depth.depths
	w := r.Width()

	for row := minY; row <= maxY; row++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowBase := (int(height-1-row))*w + int(minX)

		for col := minX; col <= maxX; col++ {
			// Non-negative iff all three are.
			if w0|w1|w2 >= 0 {
				l0 := float64(w0) * invArea
				l1 := float64(w1) * invArea
				l2 := float64(w2) * invArea

				z := l0*v[0].Z + l1*v[1].Z + l2*v[2].Z
				idx := rowBase + int(col-minX)
				if z < depths[idx] {
					c := flatColor
					if !flat {
						p0, p1, p2 := l0*v[0].InvW, l1*v[1].InvW, l2*v[2].InvW
						n := v[0].Normal.Scale(p0).Add(v[1].Normal.Scale(p1)).Add(v[2].Normal.Scale(p2))
						c = shade(n, toLight, base)
					}
					depths[idx] = z
					colors[idx] = c
					r.Stats.PixelsWritten++
				}
			}
			w0 += w0StepX
			w1 += w1StepX
			w2 += w2StepX
		}
		w0Row += w0StepY
		w1Row += w1StepY
		w2Row += w2StepY
	}
	return true
}

// shade lights base by n (any length) against the unit vector toLight. A
// zero normal, which only a degenerate triangle can produce, gets the
// ambient floor.
func shade(n, toLight math3d.Vec3, base Color) uint32 {
	intensity := AmbientFloor
	if l := n.Len(); l > 0 {
		intensity = math.Max(n.Dot(toLight)/l, AmbientFloor)
	}
	return Pack(Shade(base, intensity))
}
