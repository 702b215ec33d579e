package viewer

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/render"
)

// Zoom limits for Orbit.Distance.
const (
	MinDistance = 1.0
	MaxDistance = 50.0
)

const maxOrbitPitch = math.Pi/2 - 0.01

// Axis is one orbit angle whose velocity decays to zero on a spring.
type Axis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewAxis creates an axis starting at position.
func NewAxis(fps int, position float64) Axis {
	return Axis{
		Position: position,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and eases velocity toward 0.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Moving reports whether the axis still has noticeable velocity.
func (a *Axis) Moving() bool {
	return math.Abs(a.Velocity) > 1e-6 || math.Abs(a.velAccel) > 1e-6
}

// Orbit moves a camera on a sphere around Target. Yaw and pitch are driven
// by spring-damped impulses so input keeps coasting after a key or mouse
// drag ends. Camera roll is not preserved.
type Orbit struct {
	Pitch, Yaw Axis
	Target     math3d.Vec3
	Distance   float64

	fps     int
	initial struct {
		pitch, yaw, distance float64
	}
}

// NewOrbit derives an orbit from the camera's current placement. The target
// is the point Distance units along the camera's forward axis, where
// Distance is the camera's distance from the world origin (at least
// MinDistance).
func NewOrbit(cam *render.Camera, fps int) *Orbit {
	dist := max(cam.Position().Len(), MinDistance)
	target := cam.Position().Add(cam.Forward().Scale(dist))
	return NewOrbitAround(cam, target, fps)
}

// NewOrbitAround derives an orbit around target from the camera position.
func NewOrbitAround(cam *render.Camera, target math3d.Vec3, fps int) *Orbit {
	offset := cam.Position().Sub(target)
	dist := offset.Len()
	var pitch, yaw float64
	if dist > 0 {
		pitch = math.Asin(clamp(offset.Y/dist, -1, 1))
		yaw = math.Atan2(offset.X, offset.Z)
	}
	dist = clamp(dist, MinDistance, MaxDistance)

	o := &Orbit{Target: target, fps: fps}
	o.initial.pitch = clamp(pitch, -maxOrbitPitch, maxOrbitPitch)
	o.initial.yaw = yaw
	o.initial.distance = dist
	o.Reset()
	return o
}

// Update advances both springs by one frame.
func (o *Orbit) Update() {
	o.Pitch.Update()
	o.Yaw.Update()
	if o.Pitch.Position > maxOrbitPitch {
		o.Pitch.Position, o.Pitch.Velocity = maxOrbitPitch, 0
	}
	if o.Pitch.Position < -maxOrbitPitch {
		o.Pitch.Position, o.Pitch.Velocity = -maxOrbitPitch, 0
	}
}

// ApplyImpulse adds angular velocity in radians per frame.
func (o *Orbit) ApplyImpulse(pitch, yaw float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
}

// Zoom moves the camera toward (negative delta) or away from the target.
func (o *Orbit) Zoom(delta float64) {
	o.Distance = clamp(o.Distance+delta, MinDistance, MaxDistance)
}

// Reset returns to the placement the orbit was created with.
func (o *Orbit) Reset() {
	o.Pitch = NewAxis(o.fps, o.initial.pitch)
	o.Yaw = NewAxis(o.fps, o.initial.yaw)
	o.Distance = o.initial.distance
}

// Eye returns the camera position for the current angles.
func (o *Orbit) Eye() math3d.Vec3 {
	p, y := o.Pitch.Position, o.Yaw.Position
	dir := math3d.V3(math.Sin(y)*math.Cos(p), math.Sin(p), math.Cos(y)*math.Cos(p))
	return o.Target.Add(dir.Scale(o.Distance))
}

// Apply places cam at Eye looking at Target.
func (o *Orbit) Apply(cam *render.Camera) {
	cam.SetPosition(o.Eye())
	cam.LookAt(o.Target)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
