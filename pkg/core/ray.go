package core

import "fmt"

// Ray represents a ray with an origin and direction.
// Direction is expected to be unit length; intersection code does not re-normalize it.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a ray from an origin and an already normalized direction
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// NewUnitRay creates a ray, normalizing the direction.
// A zero-length direction has no defined normalization and is rejected.
func NewUnitRay(origin, direction Vec3) (Ray, error) {
	if direction.IsZero() || !direction.IsFinite() {
		return Ray{}, fmt.Errorf("ray direction %v: %w", direction, ErrZeroDirection)
	}
	return Ray{Origin: origin, Direction: direction.Normalize()}, nil
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
