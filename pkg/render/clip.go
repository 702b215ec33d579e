package render

import "github.com/taigrr/haywire/pkg/math3d"

// ClipVertex is a triangle corner after projection·view·model.
type ClipVertex struct {
	// Position is in clip space; W equals -z in view space.
	Position math3d.Vec4

	// Normal is the world-space normal, not necessarily unit length.
	Normal math3d.Vec3
}

// ClipTriangle is three clip-space corners in winding order.
type ClipTriangle [3]ClipVertex

// ClipNearPlane clips tri against the plane w = near. A vertex is behind the
// plane when its W is less than near. Depending on how many corners are
// behind it returns:
//
//	0 behind: tri unchanged
//	1 behind: 2 triangles covering the remaining quad
//	2 behind: 1 triangle
//	3 behind: nothing
//
// Winding order is preserved. New vertices interpolate position and normal
// with the same parameter and land on w == near.
func ClipNearPlane(tri ClipTriangle, near float64) (out [2]ClipTriangle, n int) {
	var behind [3]bool
	count := 0
	for i, v := range tri {
		if v.Position.W < near {
			behind[i] = true
			count++
		}
	}

	switch count {
	case 0:
		out[0] = tri
		return out, 1

	case 1:
		// Rotate so the behind vertex is first; a and b follow in winding order.
		i := index(behind, true)
		v, a, b := tri[i], tri[(i+1)%3], tri[(i+2)%3]
		va := intersectNear(v, a, near)
		bv := intersectNear(b, v, near)
		out[0] = ClipTriangle{va, a, b}
		out[1] = ClipTriangle{va, b, bv}
		return out, 2

	case 2:
		i := index(behind, false)
		f, b1, b2 := tri[i], tri[(i+1)%3], tri[(i+2)%3]
		out[0] = ClipTriangle{f, intersectNear(f, b1, near), intersectNear(f, b2, near)}
		return out, 1
	}
	return out, 0
}

func index(flags [3]bool, want bool) int {
	for i, f := range flags {
		if f == want {
			return i
		}
	}
	return -1
}

// intersectNear returns the point on edge a→b where w == near. Exactly one
// of a and b is behind the plane, so the edge is never parallel to it.
func intersectNear(a, b ClipVertex, near float64) ClipVertex {
	t := (near - a.Position.W) / (b.Position.W - a.Position.W)
	p := a.Position.Lerp(b.Position, t)
	p.W = near
	return ClipVertex{
		Position: p,
		Normal:   a.Normal.Lerp(b.Normal, t),
	}
}

// ClipGuardBand clips tri to the clip-space region whose viewport
// coordinates, for a width x height buffer, lie within [-bound, bound] on
// both axes. Every W must be positive, as it is after ClipNearPlane. The
// result is a convex polygon in tri's winding order with up to 7 corners, or
// nil when nothing is left. Edge directions are preserved, so the polygon
// covers exactly the pixels of tri inside the band.
func ClipGuardBand(tri ClipTriangle, width, height int, bound float64) []ClipVertex {
	// viewport x <= bound  <=>  clip x <= (2*bound/width - 1) * w
	kx := 2 * bound / float64(width)
	ky := 2 * bound / float64(height)
	planes := [4]func(p math3d.Vec4) float64{
		func(p math3d.Vec4) float64 { return (kx-1)*p.W - p.X },
		func(p math3d.Vec4) float64 { return p.X + (kx+1)*p.W },
		func(p math3d.Vec4) float64 { return (ky-1)*p.W - p.Y },
		func(p math3d.Vec4) float64 { return p.Y + (ky+1)*p.W },
	}

	poly := tri[:]
	for _, dist := range planes {
		poly = clipPolygon(poly, dist)
		if len(poly) < 3 {
			return nil
		}
	}
	return poly
}

// clipPolygon keeps the part of poly where dist is non-negative
// (Sutherland-Hodgman against one plane).
func clipPolygon(poly []ClipVertex, dist func(math3d.Vec4) float64) []ClipVertex {
	out := make([]ClipVertex, 0, len(poly)+1)
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		da, db := dist(a.Position), dist(b.Position)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, ClipVertex{
				Position: a.Position.Lerp(b.Position, t),
				Normal:   a.Normal.Lerp(b.Normal, t),
			})
		}
	}
	return out
}
