package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3 // A point on the plane
	Normal   core.Vec3 // Unit normal
	Material int
}

// NewPlane creates a new plane. The normal is normalized and must be non-zero.
func NewPlane(point, normal core.Vec3, materialID int) (*Plane, error) {
	if normal.IsZero() || !normal.IsFinite() {
		return nil, fmt.Errorf("plane at %v: %w", point, core.ErrZeroNormal)
	}
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		Material: materialID,
	}, nil
}

// Validate checks the plane invariants
func (p *Plane) Validate() error {
	if p.Normal.IsZero() || !p.Normal.IsFinite() {
		return fmt.Errorf("plane at %v: %w", p.Point, core.ErrZeroNormal)
	}
	return nil
}

// MaterialID returns the material table index of the plane
func (p *Plane) MaterialID() int {
	return p.Material
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (core.Hit, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel rays never reach the plane
	if math.Abs(denominator) < parallelEpsilon {
		return core.Hit{}, false
	}

	// t = (point_on_plane - ray_origin) · normal / (ray_direction · normal)
	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if !inRange(t, tMin, tMax) {
		return core.Hit{}, false
	}

	hit := core.Hit{
		T:          t,
		Point:      ray.At(t),
		MaterialID: p.Material,
		Primitive:  core.NoPrimitive,
	}

	// Oriented against the ray like the sphere so lighting is consistent from both sides
	hit.SetFaceNormal(ray, p.Normal)

	return hit, true
}
