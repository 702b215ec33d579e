package math3d

import (
	"fmt"
	"math"
)

// NormalW is the W marker carried by normals and direction vectors.
// It is non-zero so a direction can never be mistaken for the point at
// infinity, and small enough that a translation applied to it is negligible.
const NormalW = 0.0001

// Vec4 represents a homogeneous 3D point (W=1), a direction (W=NormalW),
// or a clip-space position whose W is the perspective divisor.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// Point returns the homogeneous point (x, y, z, 1).
func Point(x, y, z float64) Vec4 {
	return Vec4{x, y, z, 1}
}

// Direction returns the direction vector (x, y, z, NormalW).
func Direction(x, y, z float64) Vec4 {
	return Vec4{x, y, z, NormalW}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// DivW divides every component by W, so the result has W=1.
// A zero W is a programming error and panics.
func (v Vec4) DivW() Vec4 {
	if v.W == 0 {
		panic(fmt.Sprintf("math3d: perspective divide by zero w (%v)", v))
	}
	inv := 1.0 / v.W
	return Vec4{v.X * inv, v.Y * inv, v.Z * inv, 1}
}

// Add returns the vector sum.
//
//nolint:st1016 // a+b naming convention is clearer for vector operations
func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

// Sub returns the vector difference.
//
//nolint:st1016 // a-b naming convention is clearer for vector operations
func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}

// Scale returns the scalar product.
func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Dot returns the four-component dot product.
//
//nolint:st1016 // a·b naming convention is clearer for vector operations
func (a Vec4) Dot(b Vec4) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// Cross returns the cross product of the XYZ parts. W of the result is 0.
//
//nolint:st1016 // a×b naming convention is clearer for vector operations
func (a Vec4) Cross(b Vec4) Vec4 {
	return Vec4{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
		0,
	}
}

// Len returns the four-component length.
func (v Vec4) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector. It panics on a zero-length vector.
func (v Vec4) Normalize() Vec4 {
	l := v.Len()
	if l == 0 {
		panic("math3d: normalize of zero-length Vec4")
	}
	return v.Scale(1 / l)
}

// Lerp returns linear interpolation, W included.
//
//nolint:st1016 // a,b naming convention is clearer for interpolation
func (a Vec4) Lerp(b Vec4, t float64) Vec4 {
	return Vec4{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
		a.W + (b.W-a.W)*t,
	}
}

func (v Vec4) String() string {
	return fmt.Sprintf("Vec4(%g, %g, %g, %g)", v.X, v.Y, v.Z, v.W)
}
