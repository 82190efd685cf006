package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Primitives  int    `json:"primitives"`  // Number of primitives in the scene

	Camera CameraPose             `json:"-"`
	build  func() (*Scene, error) // Builds a fresh scene on every call
}

// Build creates a new instance of the scene
func (si SceneInfo) Build() (*Scene, error) {
	return si.build()
}

var builtInScenes = []SceneInfo{
	{
		ID:          "default",
		Description: "Two spheres lit from below, the reference scene",
		Camera:      DefaultCameraPose(),
		build:       NewDefaultScene,
	},
	{
		ID:          "shadow",
		Description: "Spheres casting hard shadows onto a ground plane",
		Camera: CameraPose{
			Position: core.NewVec3(0, 0.5, 3),
			Yaw:      -90,
			Pitch:    -10,
			Fov:      45,
		},
		build: NewShadowScene,
	},
	{
		ID:          "empty",
		Description: "No primitives, background only",
		Camera:      DefaultCameraPose(),
		build:       NewEmptyScene,
	},
}

// ListScenes returns all built-in scenes sorted by display name
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtInScenes))
	for _, info := range builtInScenes {
		info.DisplayName = titleCase(info.ID)
		if s, err := info.build(); err == nil {
			info.Primitives = s.GetPrimitiveCount()
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes
}

// Lookup finds a built-in scene by id
func Lookup(id string) (SceneInfo, error) {
	for _, info := range builtInScenes {
		if info.ID == id {
			info.DisplayName = titleCase(info.ID)
			return info, nil
		}
	}
	return SceneInfo{}, fmt.Errorf("unknown scene %q", id)
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
