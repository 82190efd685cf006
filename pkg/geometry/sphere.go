package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material int
}

// NewSphere creates a new sphere. The radius must be positive.
func NewSphere(center core.Vec3, radius float64, materialID int) (*Sphere, error) {
	s := &Sphere{
		Center:   center,
		Radius:   radius,
		Material: materialID,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the sphere invariants
func (s *Sphere) Validate() error {
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("sphere at %v with radius %g: %w", s.Center, s.Radius, core.ErrNonPositiveRadius)
	}
	return nil
}

// MaterialID returns the material table index of the sphere
func (s *Sphere) MaterialID() int {
	return s.Material
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (core.Hit, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic a*t^2 + b*t + c = 0 with b = 2*halfB
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return core.Hit{}, false
	}

	// A zero discriminant gives the single tangent root twice
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !inRange(root, tMin, tMax) {
		root = (-halfB + sqrtD) / a
		if !inRange(root, tMin, tMax) {
			return core.Hit{}, false
		}
	}

	hit := core.Hit{
		T:          root,
		Point:      ray.At(root),
		MaterialID: s.Material,
		Primitive:  core.NoPrimitive,
	}

	outwardNormal := hit.Point.Subtract(s.Center).Normalize()
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}
