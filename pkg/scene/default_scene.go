package scene

import (
	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// CameraPose is the recommended starting camera for a built-in scene.
// Yaw and pitch are in degrees; yaw -90 looks down -Z.
type CameraPose struct {
	Position core.Vec3
	Yaw      float64
	Pitch    float64
	Fov      float64 // Vertical field of view in degrees
}

// DefaultCameraPose looks down -Z from (0,0,3) with a 45 degree field of view
func DefaultCameraPose() CameraPose {
	return CameraPose{
		Position: core.NewVec3(0, 0, 3),
		Yaw:      -90,
		Pitch:    0,
		Fov:      45,
	}
}

// NewDefaultScene creates the two-sphere reference scene:
// a small sphere at the origin and a larger one behind and above it,
// lit from below-right.
func NewDefaultScene() (*Scene, error) {
	s := NewScene(core.NewVec3(1.5, -2.0, 2.0))

	blue := s.AddMaterial(core.NewVec3(0.0, 0.0, 0.8))
	red := s.AddMaterial(core.NewVec3(0.8, 0.25, 0.2))

	if _, err := s.AddSphere(core.NewVec3(0, 0, 0), 0.5, blue); err != nil {
		return nil, err
	}
	if _, err := s.AddSphere(core.NewVec3(-0.5, 2.0, -1.5), 1.0, red); err != nil {
		return nil, err
	}

	return s, s.Validate()
}

// NewShadowScene places spheres over a large ground plane lit from above
// so that hard shadows fall on the plane.
func NewShadowScene() (*Scene, error) {
	s := NewScene(core.NewVec3(2.0, 4.0, 2.0))

	ground := s.AddMaterial(core.NewVec3(0.7, 0.7, 0.7))
	blue := s.AddMaterial(core.NewVec3(0.0, 0.0, 0.8))
	gold := s.AddMaterial(core.NewVec3(0.8, 0.6, 0.2))

	if _, err := s.AddPlane(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 1, 0), ground); err != nil {
		return nil, err
	}
	if _, err := s.AddSphere(core.NewVec3(0, 0, 0), 0.5, blue); err != nil {
		return nil, err
	}
	if _, err := s.AddSphere(core.NewVec3(1.0, -0.25, -0.75), 0.25, gold); err != nil {
		return nil, err
	}

	return s, s.Validate()
}

// NewEmptyScene has no primitives; every ray shows the background
func NewEmptyScene() (*Scene, error) {
	s := NewScene(core.NewVec3(1.5, -2.0, 2.0))
	return s, s.Validate()
}
