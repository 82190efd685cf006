package renderer

import (
	"testing"
	"time"
)

func TestFrameStats_Add(t *testing.T) {
	total := FrameStats{TotalPixels: 10, PrimaryHits: 4, ShadowRays: 3, ShadowedPixels: 1, Duration: time.Second}
	total.Add(FrameStats{TotalPixels: 6, PrimaryHits: 2, ShadowRays: 2, ShadowedPixels: 2, Duration: time.Minute})

	expected := FrameStats{TotalPixels: 16, PrimaryHits: 6, ShadowRays: 5, ShadowedPixels: 3, Duration: time.Second}
	if total != expected {
		t.Errorf("Expected %+v, got %+v", expected, total)
	}
}

func TestFrameStats_HitRatio(t *testing.T) {
	tests := []struct {
		name     string
		stats    FrameStats
		expected float64
	}{
		{"empty", FrameStats{}, 0},
		{"half", FrameStats{TotalPixels: 8, PrimaryHits: 4}, 0.5},
		{"all", FrameStats{TotalPixels: 3, PrimaryHits: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HitRatio(); got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}
