package loaders

import (
	"fmt"
	"math"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/scene"
)

// PBRT defaults for parameters that are omitted
const (
	defaultFov          = 90.0
	defaultSphereRadius = 1.0
)

var defaultReflectance = core.NewVec3(0.5, 0.5, 0.5)

// LoadScene loads a PBRT file and converts it into a scene and the camera pose it describes
func LoadScene(filename string) (*scene.Scene, scene.CameraPose, error) {
	pbrtScene, err := LoadPBRT(filename)
	if err != nil {
		return nil, scene.CameraPose{}, err
	}
	s, pose, err := BuildScene(pbrtScene)
	if err != nil {
		return nil, scene.CameraPose{}, fmt.Errorf("%s: %w", filename, err)
	}
	return s, pose, nil
}

// BuildScene converts parsed PBRT statements into a scene.
// Exactly one point light is required; only diffuse materials and
// sphere/plane shapes are supported.
func BuildScene(pbrtScene *PBRTScene) (*scene.Scene, scene.CameraPose, error) {
	pose, err := buildCameraPose(pbrtScene)
	if err != nil {
		return nil, scene.CameraPose{}, err
	}

	light, err := buildLight(pbrtScene.LightSources)
	if err != nil {
		return nil, scene.CameraPose{}, err
	}
	s := scene.NewScene(light)

	for i, stmt := range pbrtScene.Materials {
		if stmt.Subtype != "diffuse" {
			return nil, scene.CameraPose{}, fmt.Errorf("material %d: unsupported material type %q", i, stmt.Subtype)
		}
		albedo := defaultReflectance
		if reflectance, ok := stmt.GetVec3Param("reflectance"); ok {
			albedo = *reflectance
		}
		s.AddMaterial(albedo)
	}

	// Shapes declared before any material share one default material
	defaultMaterial := core.NoMaterial

	for i, stmt := range pbrtScene.Shapes {
		materialID := stmt.MaterialIndex
		if materialID < 0 {
			if defaultMaterial == core.NoMaterial {
				defaultMaterial = s.AddMaterial(defaultReflectance)
			}
			materialID = defaultMaterial
		}

		if err := addShape(s, stmt, materialID); err != nil {
			return nil, scene.CameraPose{}, fmt.Errorf("shape %d: %w", i, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, scene.CameraPose{}, err
	}
	return s, pose, nil
}

func addShape(s *scene.Scene, stmt PBRTStatement, materialID int) error {
	switch stmt.Subtype {
	case "sphere":
		radius := defaultSphereRadius
		if r, ok := stmt.GetFloatParam("radius"); ok {
			radius = r
		}
		_, err := s.AddSphere(stmt.Offset, radius, materialID)
		return err

	case "plane":
		point := core.NewVec3(0, 0, 0)
		if p, ok := stmt.GetVec3Param("point"); ok {
			point = *p
		}
		normal := core.NewVec3(0, 1, 0)
		if n, ok := stmt.GetVec3Param("N"); ok {
			normal = *n
		}
		_, err := s.AddPlane(point.Add(stmt.Offset), normal, materialID)
		return err

	default:
		return fmt.Errorf("unsupported shape type %q", stmt.Subtype)
	}
}

func buildLight(lights []PBRTStatement) (core.Vec3, error) {
	if len(lights) != 1 {
		return core.Vec3{}, fmt.Errorf("scene requires exactly one point light, found %d", len(lights))
	}
	light := lights[0]
	if light.Subtype != "point" {
		return core.Vec3{}, fmt.Errorf("unsupported light type %q", light.Subtype)
	}

	from := core.NewVec3(0, 0, 0)
	if f, ok := light.GetVec3Param("from"); ok {
		from = *f
	}
	return from.Add(light.Offset), nil
}

// buildCameraPose derives yaw and pitch from LookAt. The LookAt up vector is
// ignored; cameras always use world +Y as up.
func buildCameraPose(pbrtScene *PBRTScene) (scene.CameraPose, error) {
	pose := scene.DefaultCameraPose()

	if pbrtScene.Camera != nil {
		if pbrtScene.Camera.Subtype != "perspective" {
			return pose, fmt.Errorf("unsupported camera type %q", pbrtScene.Camera.Subtype)
		}
		pose.Fov = defaultFov
		if fov, ok := pbrtScene.Camera.GetFloatParam("fov"); ok {
			pose.Fov = fov
		}
	}

	if pbrtScene.LookAt != nil {
		direction := pbrtScene.LookAtTo.Subtract(*pbrtScene.LookAt)
		if direction.IsZero() {
			return pose, fmt.Errorf("LookAt eye and target coincide: %w", core.ErrInvalidCamera)
		}
		direction = direction.Normalize()

		pose.Position = *pbrtScene.LookAt
		pose.Yaw = math.Atan2(direction.Z, direction.X) * 180 / math.Pi
		pose.Pitch = math.Asin(direction.Y) * 180 / math.Pi
	}

	return pose, nil
}
