package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// Default camera orientation: looking down -Z with a 45 degree vertical field of view
const (
	DefaultYaw   = -90.0
	DefaultPitch = 0.0
	DefaultFov   = 45.0

	// pitchLimit keeps the front vector away from world up so the basis stays defined
	pitchLimit = 89.0
)

// Camera is a pinhole camera described by a position and an orthonormal basis.
// Yaw and pitch are in degrees and are the source of the basis vectors.
type Camera struct {
	Position core.Vec3
	Front    core.Vec3
	Up       core.Vec3
	Right    core.Vec3
	WorldUp  core.Vec3

	Yaw   float64
	Pitch float64
	Fov   float64 // Vertical field of view in degrees
}

// NewCamera creates a camera at position looking down -Z
func NewCamera(position core.Vec3) *Camera {
	return NewCameraFromAngles(position, DefaultYaw, DefaultPitch, DefaultFov)
}

// NewCameraFromAngles creates a camera from yaw/pitch in degrees and a vertical fov
func NewCameraFromAngles(position core.Vec3, yaw, pitch, fov float64) *Camera {
	c := &Camera{
		Position: position,
		WorldUp:  core.NewVec3(0, 1, 0),
		Yaw:      yaw,
		Pitch:    mgl64.Clamp(pitch, -pitchLimit, pitchLimit),
		Fov:      fov,
	}
	c.updateVectors()
	return c
}

// DebugCamera returns a camera offset from main by (10,10,10) and looking back at it
func DebugCamera(main *Camera) *Camera {
	debug := NewCameraFromAngles(main.Position.Add(core.NewVec3(10, 10, 10)), DefaultYaw, DefaultPitch, main.Fov)
	debug.LookAt(main.Position)
	return debug
}

// LookAt turns the camera toward target, re-deriving yaw, pitch and the basis.
// A target equal to the camera position leaves the orientation unchanged.
func (c *Camera) LookAt(target core.Vec3) {
	dir := toMgl(target.Subtract(c.Position))
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()

	c.Pitch = mgl64.Clamp(mgl64.RadToDeg(math.Asin(dir.Y())), -pitchLimit, pitchLimit)
	c.Yaw = mgl64.RadToDeg(math.Atan2(dir.Z(), dir.X()))
	c.updateVectors()
}

// updateVectors recomputes front/right/up from yaw and pitch
func (c *Camera) updateVectors() {
	yaw := mgl64.DegToRad(c.Yaw)
	pitch := mgl64.DegToRad(c.Pitch)

	front := mgl64.Vec3{
		math.Cos(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw) * math.Cos(pitch),
	}.Normalize()
	right := front.Cross(toMgl(c.WorldUp)).Normalize()
	up := right.Cross(front).Normalize()

	c.Front = fromMgl(front)
	c.Right = fromMgl(right)
	c.Up = fromMgl(up)
}

// Validate checks the field of view and that the basis is orthonormal
func (c *Camera) Validate() error {
	if !(c.Fov > 0 && c.Fov < 180) {
		return fmt.Errorf("fov %g outside (0, 180): %w", c.Fov, core.ErrInvalidCamera)
	}
	if !c.Position.IsFinite() {
		return fmt.Errorf("position %v: %w", c.Position, core.ErrInvalidCamera)
	}

	const tolerance = 1e-6
	for name, v := range map[string]core.Vec3{"front": c.Front, "up": c.Up, "right": c.Right} {
		if math.Abs(v.Length()-1) > tolerance {
			return fmt.Errorf("%s vector %v is not unit length: %w", name, v, core.ErrInvalidCamera)
		}
	}
	if math.Abs(c.Front.Dot(c.Up)) > tolerance ||
		math.Abs(c.Front.Dot(c.Right)) > tolerance ||
		math.Abs(c.Up.Dot(c.Right)) > tolerance {
		return fmt.Errorf("basis is not orthogonal: %w", core.ErrInvalidCamera)
	}
	return nil
}

// GetRay returns the primary ray through the center of pixel (x, y).
// v is flipped so that row 0 is the top of the image.
func (c *Camera) GetRay(x, y, width, height int) core.Ray {
	u := 2*(float64(x)+0.5)/float64(width) - 1
	v := 1 - 2*(float64(y)+0.5)/float64(height)

	aspect := float64(width) / float64(height)
	scale := math.Tan(mgl64.DegToRad(c.Fov) * 0.5)

	direction := c.Front.
		Add(c.Right.Multiply(u * aspect * scale)).
		Add(c.Up.Multiply(v * scale))

	return core.NewRay(c.Position, direction.Normalize())
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v.X(), v.Y(), v.Z())
}
