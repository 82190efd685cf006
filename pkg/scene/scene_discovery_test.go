package scene

import (
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListScenes(t *testing.T) {
	scenes := ListScenes()
	if len(scenes) != 3 {
		t.Fatalf("Expected 3 built-in scenes, got %d", len(scenes))
	}

	for i := 1; i < len(scenes); i++ {
		if scenes[i-1].DisplayName > scenes[i].DisplayName {
			t.Errorf("Scenes not sorted: %q before %q", scenes[i-1].DisplayName, scenes[i].DisplayName)
		}
	}

	counts := map[string]int{"default": 2, "shadow": 3, "empty": 0}
	for _, info := range scenes {
		want, ok := counts[info.ID]
		if !ok {
			t.Errorf("Unexpected scene %q", info.ID)
			continue
		}
		if info.Primitives != want {
			t.Errorf("Scene %q: expected %d primitives, got %d", info.ID, want, info.Primitives)
		}
	}
}

func TestLookup(t *testing.T) {
	info, err := Lookup("shadow")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.DisplayName != "Shadow" {
		t.Errorf("Expected display name 'Shadow', got %q", info.DisplayName)
	}

	first, err := info.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := info.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if first == second {
		t.Error("Expected each Build to return a fresh scene")
	}

	if _, err := Lookup("cornell-box"); err == nil {
		t.Error("Expected error for unknown scene")
	}
}
