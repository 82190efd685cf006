package scene

import (
	"fmt"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/geometry"
)

// Material is a flat albedo color, linear and not gamma-corrected
type Material struct {
	Albedo core.Vec3
}

// Scene contains the primitives, material table and light for rendering.
// A scene must not be mutated while a frame is being rendered from it.
type Scene struct {
	Shapes    []geometry.Shape // Scanned in order for every ray
	Materials []Material       // Indexed by material id
	Light     core.Vec3        // Point light position, white with intensity 1

	TopColor    core.Vec3 // Background gradient color straight up
	BottomColor core.Vec3 // Background gradient color straight down
}

// ExcludeFunc reports whether a primitive should be skipped by an intersection query
type ExcludeFunc func(index int, shape geometry.Shape) bool

// ExcludePrimitive skips the primitive at the given scene index
func ExcludePrimitive(index int) ExcludeFunc {
	return func(i int, _ geometry.Shape) bool {
		return i == index
	}
}

// ExcludeMaterial skips every primitive using the given material id
func ExcludeMaterial(materialID int) ExcludeFunc {
	return func(_ int, shape geometry.Shape) bool {
		return shape.MaterialID() == materialID
	}
}

// NewScene creates an empty scene lit from the given position with the default sky gradient
func NewScene(light core.Vec3) *Scene {
	return &Scene{
		Shapes:      make([]geometry.Shape, 0),
		Materials:   make([]Material, 0),
		Light:       light,
		TopColor:    core.NewVec3(0.5, 0.7, 1.0),
		BottomColor: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// AddMaterial appends a material and returns its id
func (s *Scene) AddMaterial(albedo core.Vec3) int {
	s.Materials = append(s.Materials, Material{Albedo: albedo})
	return len(s.Materials) - 1
}

// Add appends a shape and returns its primitive index
func (s *Scene) Add(shape geometry.Shape) int {
	s.Shapes = append(s.Shapes, shape)
	return len(s.Shapes) - 1
}

// AddSphere validates and appends a sphere
func (s *Scene) AddSphere(center core.Vec3, radius float64, materialID int) (int, error) {
	sphere, err := geometry.NewSphere(center, radius, materialID)
	if err != nil {
		return -1, err
	}
	return s.Add(sphere), nil
}

// AddPlane validates and appends a plane
func (s *Scene) AddPlane(point, normal core.Vec3, materialID int) (int, error) {
	plane, err := geometry.NewPlane(point, normal, materialID)
	if err != nil {
		return -1, err
	}
	return s.Add(plane), nil
}

// Material returns the material with the given id
func (s *Scene) Material(id int) (Material, bool) {
	if id < 0 || id >= len(s.Materials) {
		return Material{}, false
	}
	return s.Materials[id], true
}

// GetBackgroundColors returns the top and bottom gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetPrimitiveCount returns the number of primitives in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

// Validate checks every primitive once so that intersection code never has to
func (s *Scene) Validate() error {
	if !s.Light.IsFinite() {
		return fmt.Errorf("light position %v is not finite", s.Light)
	}
	for i, shape := range s.Shapes {
		if shape == nil {
			return fmt.Errorf("primitive %d is nil", i)
		}
		if err := shape.Validate(); err != nil {
			return fmt.Errorf("primitive %d: %w", i, err)
		}
		if _, ok := s.Material(shape.MaterialID()); !ok {
			return fmt.Errorf("primitive %d uses material %d of %d: %w",
				i, shape.MaterialID(), len(s.Materials), core.ErrUnknownMaterial)
		}
	}
	return nil
}

// Intersect returns the nearest hit in [tMin, tMax] across all primitives.
// tMax shrinks to each accepted hit, so later primitives must beat it.
// Ties on exactly equal t keep the earlier primitive.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64, exclude ExcludeFunc) (core.Hit, bool) {
	var closest core.Hit
	closestSoFar := tMax
	hitAnything := false

	for i, shape := range s.Shapes {
		if exclude != nil && exclude(i, shape) {
			continue
		}
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			if hitAnything && hit.T == closestSoFar {
				continue
			}
			hitAnything = true
			closestSoFar = hit.T
			hit.Primitive = i
			closest = hit
		}
	}

	return closest, hitAnything
}

// Occluded reports whether any primitive intersects the ray in [tMin, tMax]
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64, exclude ExcludeFunc) bool {
	for i, shape := range s.Shapes {
		if exclude != nil && exclude(i, shape) {
			continue
		}
		if _, isHit := shape.Hit(ray, tMin, tMax); isHit {
			return true
		}
	}
	return false
}
