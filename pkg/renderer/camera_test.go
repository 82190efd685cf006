package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestNewCamera_DefaultBasis(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 3))

	tests := []struct {
		name     string
		got      core.Vec3
		expected core.Vec3
	}{
		{"front", camera.Front, core.NewVec3(0, 0, -1)},
		{"right", camera.Right, core.NewVec3(1, 0, 0)},
		{"up", camera.Up, core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vecNear(tt.got, tt.expected, 1e-9) {
				t.Errorf("Expected %s %v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}

	if camera.Fov != DefaultFov {
		t.Errorf("Expected fov %f, got %f", DefaultFov, camera.Fov)
	}
	if err := camera.Validate(); err != nil {
		t.Errorf("Default camera should validate, got %v", err)
	}
}

func TestNewCameraFromAngles_ClampsPitch(t *testing.T) {
	camera := NewCameraFromAngles(core.NewVec3(0, 0, 0), -90, 120, 45)
	if camera.Pitch != pitchLimit {
		t.Errorf("Expected pitch clamped to %f, got %f", pitchLimit, camera.Pitch)
	}
	if err := camera.Validate(); err != nil {
		t.Errorf("Clamped camera should validate, got %v", err)
	}
}

func TestCamera_LookAt(t *testing.T) {
	tests := []struct {
		name          string
		target        core.Vec3
		expectedFront core.Vec3
		expectedYaw   float64
	}{
		{"down -Z", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), -90},
		{"along +X", core.NewVec3(5, 0, 3), core.NewVec3(1, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCameraFromAngles(core.NewVec3(0, 0, 3), 30, 20, 45)
			camera.LookAt(tt.target)

			if !vecNear(camera.Front, tt.expectedFront, 1e-9) {
				t.Errorf("Expected front %v, got %v", tt.expectedFront, camera.Front)
			}
			if math.Abs(camera.Yaw-tt.expectedYaw) > 1e-9 {
				t.Errorf("Expected yaw %f, got %f", tt.expectedYaw, camera.Yaw)
			}
			if math.Abs(camera.Pitch) > 1e-9 {
				t.Errorf("Expected pitch 0, got %f", camera.Pitch)
			}
		})
	}
}

func TestCamera_LookAtSelfKeepsOrientation(t *testing.T) {
	camera := NewCamera(core.NewVec3(1, 2, 3))
	before := *camera
	camera.LookAt(camera.Position)

	if camera.Front != before.Front || camera.Yaw != before.Yaw {
		t.Errorf("Looking at own position changed orientation: %v -> %v", before.Front, camera.Front)
	}
}

func TestDebugCamera(t *testing.T) {
	main := NewCamera(core.NewVec3(0, 0, 3))
	debug := DebugCamera(main)

	expectedPosition := core.NewVec3(10, 10, 13)
	if !vecNear(debug.Position, expectedPosition, 1e-12) {
		t.Errorf("Expected debug position %v, got %v", expectedPosition, debug.Position)
	}

	expectedFront := core.NewVec3(-1, -1, -1).Normalize()
	if !vecNear(debug.Front, expectedFront, 1e-9) {
		t.Errorf("Expected debug camera to face the main camera %v, got %v", expectedFront, debug.Front)
	}
	if err := debug.Validate(); err != nil {
		t.Errorf("Debug camera should validate, got %v", err)
	}
}

func TestCamera_Validate(t *testing.T) {
	zeroFront := NewCamera(core.NewVec3(0, 0, 0))
	zeroFront.Front = core.Vec3{}

	skewed := NewCamera(core.NewVec3(0, 0, 0))
	skewed.Up = core.NewVec3(0, 1, 1).Normalize()

	tests := []struct {
		name   string
		camera *Camera
	}{
		{"zero fov", NewCameraFromAngles(core.NewVec3(0, 0, 0), -90, 0, 0)},
		{"fov 180", NewCameraFromAngles(core.NewVec3(0, 0, 0), -90, 0, 180)},
		{"NaN fov", NewCameraFromAngles(core.NewVec3(0, 0, 0), -90, 0, math.NaN())},
		{"zero front", zeroFront},
		{"non-orthogonal basis", skewed},
		{"infinite position", NewCamera(core.NewVec3(math.Inf(1), 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.camera.Validate(); !errors.Is(err, core.ErrInvalidCamera) {
				t.Errorf("Expected ErrInvalidCamera, got %v", err)
			}
		})
	}
}

func TestCamera_GetRay_CornersWithinFieldOfView(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 3))
	width, height := 800, 600
	aspect := float64(width) / float64(height)
	scale := math.Tan(camera.Fov * math.Pi / 360)

	corners := []struct {
		name  string
		x, y  int
		signX float64
		signY float64
	}{
		{"top-left", 0, 0, -1, 1},
		{"top-right", width - 1, 0, 1, 1},
		{"bottom-left", 0, height - 1, -1, -1},
		{"bottom-right", width - 1, height - 1, 1, -1},
	}

	for _, c := range corners {
		t.Run(c.name, func(t *testing.T) {
			ray := camera.GetRay(c.x, c.y, width, height)

			if math.Abs(ray.Direction.Length()-1) > 1e-12 {
				t.Errorf("Expected unit direction, got length %f", ray.Direction.Length())
			}
			if ray.Origin != camera.Position {
				t.Errorf("Expected origin %v, got %v", camera.Position, ray.Origin)
			}

			// Camera looks down -Z, so slopes are measured against -dir.Z
			forward := -ray.Direction.Z
			if forward <= 0 {
				t.Fatalf("Corner ray points away from the view direction: %v", ray.Direction)
			}
			horizontal := ray.Direction.X / forward
			vertical := ray.Direction.Y / forward

			if horizontal*c.signX <= 0 || vertical*c.signY <= 0 {
				t.Errorf("Corner ray %v is in the wrong quadrant", ray.Direction)
			}
			if math.Abs(horizontal) >= aspect*scale {
				t.Errorf("Horizontal slope %f exceeds half-width %f", math.Abs(horizontal), aspect*scale)
			}
			if math.Abs(vertical) >= scale {
				t.Errorf("Vertical slope %f exceeds tan(fov/2) %f", math.Abs(vertical), scale)
			}
			// Pixel centers sit half a pixel inside the frustum edge
			if math.Abs(vertical) < scale*(1-2.0/float64(height)) {
				t.Errorf("Vertical slope %f too far inside tan(fov/2) %f", math.Abs(vertical), scale)
			}
		})
	}
}

func TestCamera_GetRay_RowZeroIsTop(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0))

	top := camera.GetRay(5, 0, 10, 10)
	bottom := camera.GetRay(5, 9, 10, 10)
	if top.Direction.Y <= bottom.Direction.Y {
		t.Errorf("Expected row 0 to look up: top %v bottom %v", top.Direction, bottom.Direction)
	}
}
