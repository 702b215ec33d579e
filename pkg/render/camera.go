package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/haywire/pkg/math3d"
)

// ErrInvalidCamera is returned when the projection parameters cannot
// produce a usable perspective matrix.
var ErrInvalidCamera = errors.New("invalid camera")

// Camera is a posed perspective camera. The pose is a ModelMatrix whose
// Rotation holds pitch (X), yaw (Y) and roll (Z); Pose.Scale is ignored.
type Camera struct {
	Pose ModelMatrix

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane
}

// NewCamera creates a camera at the origin looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		Pose:        NewModelMatrix(),
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
	}
}

// Validate checks the projection parameters.
func (c *Camera) Validate() error {
	switch {
	case c.Near <= 0:
		return fmt.Errorf("%w: near %v must be positive", ErrInvalidCamera, c.Near)
	case c.Far <= c.Near:
		return fmt.Errorf("%w: far %v must exceed near %v", ErrInvalidCamera, c.Far, c.Near)
	case c.FOV <= 0 || c.FOV >= math.Pi:
		return fmt.Errorf("%w: fov %v outside (0, pi)", ErrInvalidCamera, c.FOV)
	case c.AspectRatio <= 0:
		return fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidCamera, c.AspectRatio)
	}
	return nil
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.Pose.Translation
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Pose.Translation = pos
}

// SetRotation sets the camera rotation (pitch, yaw, roll in radians).
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pose.Rotation = math3d.V3(pitch, yaw, roll)
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
}

// Forward returns the direction the camera looks along (-Z rotated by the pose).
func (c *Camera) Forward() math3d.Vec3 {
	return c.Pose.RotationMatrix().MulDir(math3d.V3(0, 0, -1))
}

// Right returns the camera's +X axis in world space.
func (c *Camera) Right() math3d.Vec3 {
	return c.Pose.RotationMatrix().MulDir(math3d.V3(1, 0, 0))
}

// Up returns the camera's +Y axis in world space.
func (c *Camera) Up() math3d.Vec3 {
	return c.Pose.RotationMatrix().MulDir(math3d.V3(0, 1, 0))
}

// ViewMatrix returns the world-to-camera transform: the transposed pose
// rotation with -Rᵀ·t in the translation column.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	rt := c.Pose.RotationMatrix().Transpose()
	rt.SetTranslation(rt.MulDir(c.Pose.Translation).Negate())
	return rt
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection·view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// MoveForward moves the camera forward (or backward if negative).
func (c *Camera) MoveForward(distance float64) {
	c.Pose.Translation = c.Pose.Translation.Add(c.Forward().Scale(distance))
}

// MoveRight moves the camera right (or left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Pose.Translation = c.Pose.Translation.Add(c.Right().Scale(distance))
}

// MoveUp moves the camera along world up (or down if negative).
func (c *Camera) MoveUp(distance float64) {
	c.Pose.Translation = c.Pose.Translation.Add(math3d.Up().Scale(distance))
}

// maxPitch keeps the camera just short of looking straight up or down.
const maxPitch = math.Pi/2 - 0.01

// Rotate rotates the camera by the given angles (in radians).
func (c *Camera) Rotate(deltaPitch, deltaYaw, deltaRoll float64) {
	r := c.Pose.Rotation.Add(math3d.V3(deltaPitch, deltaYaw, deltaRoll))
	r.X = math.Max(-maxPitch, math.Min(maxPitch, r.X))
	c.Pose.Rotation = r
}

// LookAt turns the camera toward target and clears roll. A target at the
// camera position leaves the orientation unchanged.
func (c *Camera) LookAt(target math3d.Vec3) {
	d := target.Sub(c.Pose.Translation)
	if d.Len() == 0 {
		return
	}
	dir := d.Normalize()

	c.Pose.Rotation = math3d.V3(
		math.Asin(dir.Y),
		math.Atan2(-dir.X, -dir.Z),
		0,
	)
}

// WorldToScreen projects a world point to buffer coordinates with the same
// viewport mapping as the rasterizer (row 0 at the bottom). visible is false
// for points outside the view frustum.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, width, height int) (col, row, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clip.W < c.Near {
		return 0, 0, 0, false
	}

	ndc := clip.DivW()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	col = (ndc.X + 1) * 0.5 * float64(width)
	row = (ndc.Y + 1) * 0.5 * float64(height)
	depth = (ndc.Z + 1) * 0.5
	return col, row, depth, true
}
