package geometry

import "github.com/df07/go-cpu-raytracer/pkg/core"

// Shape interface for objects that can be hit by rays.
// Hit treats [tMin, tMax] as a closed interval and reports the nearest root in it.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (core.Hit, bool)
	MaterialID() int
	Validate() error
}

// parallelEpsilon is the |dot(direction, normal)| below which a ray counts as parallel to a plane
const parallelEpsilon = 1e-8

// inRange reports whether t lies in the closed interval [tMin, tMax]
func inRange(t, tMin, tMax float64) bool {
	return t >= tMin && t <= tMax
}
