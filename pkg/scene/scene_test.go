package scene

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/geometry"
)

func mustSphere(t *testing.T, center core.Vec3, radius float64, materialID int) *geometry.Sphere {
	t.Helper()
	s, err := geometry.NewSphere(center, radius, materialID)
	if err != nil {
		t.Fatalf("NewSphere failed: %v", err)
	}
	return s
}

// rowOfSpheres builds spheres along -Z with distinct materials
func rowOfSpheres(t *testing.T) []geometry.Shape {
	t.Helper()
	return []geometry.Shape{
		mustSphere(t, core.NewVec3(0, 0, -6), 0.5, 0),
		mustSphere(t, core.NewVec3(0, 0, -2), 0.5, 1),
		mustSphere(t, core.NewVec3(0.2, 0, -4), 0.7, 2),
		mustSphere(t, core.NewVec3(3, 0, -1), 0.5, 3),
	}
}

func newTestScene(shapes []geometry.Shape) *Scene {
	s := NewScene(core.NewVec3(0, 5, 0))
	for i := 0; i < 4; i++ {
		s.AddMaterial(core.NewVec3(0.5, 0.5, 0.5))
	}
	for _, shape := range shapes {
		s.Add(shape)
	}
	return s
}

func TestScene_Intersect_Nearest(t *testing.T) {
	s := newTestScene(rowOfSpheres(t))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := s.Intersect(ray, 0.001, math.Inf(1), nil)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected nearest t=1.5, got %f", hit.T)
	}
	if hit.MaterialID != 1 {
		t.Errorf("Expected material 1, got %d", hit.MaterialID)
	}
	if hit.Primitive != 1 {
		t.Errorf("Expected primitive index 1, got %d", hit.Primitive)
	}
}

func TestScene_Intersect_PermutationInvariant(t *testing.T) {
	shapes := rowOfSpheres(t)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	reference, ok := newTestScene(shapes).Intersect(ray, 0.001, math.Inf(1), nil)
	if !ok {
		t.Fatal("Expected reference hit")
	}

	random := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		permuted := make([]geometry.Shape, len(shapes))
		copy(permuted, shapes)
		random.Shuffle(len(permuted), func(i, j int) {
			permuted[i], permuted[j] = permuted[j], permuted[i]
		})

		hit, ok := newTestScene(permuted).Intersect(ray, 0.001, math.Inf(1), nil)
		if !ok {
			t.Fatalf("trial %d: expected hit", trial)
		}
		if hit.T != reference.T || hit.MaterialID != reference.MaterialID {
			t.Errorf("trial %d: got t=%f material=%d, want t=%f material=%d",
				trial, hit.T, hit.MaterialID, reference.T, reference.MaterialID)
		}
	}
}

func TestScene_Intersect_Empty(t *testing.T) {
	s := NewScene(core.NewVec3(0, 0, 0))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := s.Intersect(ray, 0.001, math.Inf(1), nil); isHit {
		t.Error("Expected miss in empty scene")
	}
	if s.Occluded(ray, 0.001, math.Inf(1), nil) {
		t.Error("Expected no occlusion in empty scene")
	}
}

func TestScene_Intersect_RangeLimit(t *testing.T) {
	s := newTestScene(rowOfSpheres(t))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := s.Intersect(ray, 0.001, 1.0, nil); isHit {
		t.Error("Expected miss when tMax is before every primitive")
	}
}

func TestScene_Intersect_Exclude(t *testing.T) {
	s := newTestScene(rowOfSpheres(t))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	tests := []struct {
		name              string
		exclude           ExcludeFunc
		expectedPrimitive int
	}{
		{"no exclusion", nil, 1},
		{"exclude nearest by index", ExcludePrimitive(1), 2},
		{"exclude nearest by material", ExcludeMaterial(1), 2},
		{"exclude unrelated", ExcludePrimitive(3), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := s.Intersect(ray, 0.001, math.Inf(1), tt.exclude)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if hit.Primitive != tt.expectedPrimitive {
				t.Errorf("Expected primitive %d, got %d", tt.expectedPrimitive, hit.Primitive)
			}
		})
	}
}

func TestScene_ExcludeMaterial_SharedMaterial(t *testing.T) {
	// Two primitives share material 0: excluding by material hides both,
	// excluding by index hides only one.
	s := NewScene(core.NewVec3(0, 5, 0))
	s.AddMaterial(core.NewVec3(1, 1, 1))
	s.Add(mustSphere(t, core.NewVec3(0, 0, -2), 0.5, 0))
	s.Add(mustSphere(t, core.NewVec3(0, 0, -5), 0.5, 0))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if s.Occluded(ray, 0.001, math.Inf(1), ExcludeMaterial(0)) {
		t.Error("Expected material exclusion to hide both spheres")
	}
	if !s.Occluded(ray, 0.001, math.Inf(1), ExcludePrimitive(0)) {
		t.Error("Expected index exclusion to keep the second sphere")
	}
}

func TestScene_Validate(t *testing.T) {
	t.Run("valid default scene", func(t *testing.T) {
		if _, err := NewDefaultScene(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("unknown material", func(t *testing.T) {
		s := NewScene(core.NewVec3(0, 0, 0))
		s.Add(mustSphere(t, core.NewVec3(0, 0, 0), 1, 5))
		if err := s.Validate(); !errors.Is(err, core.ErrUnknownMaterial) {
			t.Errorf("Expected ErrUnknownMaterial, got %v", err)
		}
	})

	t.Run("literal sphere with bad radius", func(t *testing.T) {
		s := NewScene(core.NewVec3(0, 0, 0))
		s.AddMaterial(core.NewVec3(1, 1, 1))
		s.Add(&geometry.Sphere{Center: core.NewVec3(0, 0, 0), Radius: 0, Material: 0})
		if err := s.Validate(); !errors.Is(err, core.ErrNonPositiveRadius) {
			t.Errorf("Expected ErrNonPositiveRadius, got %v", err)
		}
	})

	t.Run("AddSphere rejects bad radius", func(t *testing.T) {
		s := NewScene(core.NewVec3(0, 0, 0))
		if _, err := s.AddSphere(core.NewVec3(0, 0, 0), -1, 0); !errors.Is(err, core.ErrNonPositiveRadius) {
			t.Errorf("Expected ErrNonPositiveRadius, got %v", err)
		}
		if s.GetPrimitiveCount() != 0 {
			t.Errorf("Expected rejected sphere not to be added")
		}
	})
}

func TestDefaultScene_Layout(t *testing.T) {
	s, err := NewDefaultScene()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.GetPrimitiveCount() != 2 {
		t.Errorf("Expected 2 primitives, got %d", s.GetPrimitiveCount())
	}
	if s.Light != core.NewVec3(1.5, -2.0, 2.0) {
		t.Errorf("Expected light at (1.5,-2,2), got %v", s.Light)
	}

	// The center ray from the default camera hits the small sphere first
	pose := DefaultCameraPose()
	ray := core.NewRay(pose.Position, core.NewVec3(0, 0, -1))
	hit, ok := s.Intersect(ray, 0.001, math.Inf(1), nil)
	if !ok || hit.Primitive != 0 {
		t.Fatalf("Expected center ray to hit primitive 0, got ok=%t primitive=%d", ok, hit.Primitive)
	}
	if math.Abs(hit.T-2.5) > 1e-9 {
		t.Errorf("Expected t=2.5, got %f", hit.T)
	}
}
