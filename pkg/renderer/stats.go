package renderer

import "time"

// FrameStats contains statistics about a rendered frame or part of one
type FrameStats struct {
	TotalPixels    int           // Number of pixels rendered
	PrimaryHits    int           // Primary rays that hit a primitive
	ShadowRays     int           // Shadow rays cast toward the light
	ShadowedPixels int           // Pixels whose shadow ray was occluded
	Duration       time.Duration // Wall time, set by the frame driver
}

// Add accumulates counts from another set of stats. Duration is not summed
// since parallel tiles overlap in time.
func (fs *FrameStats) Add(other FrameStats) {
	fs.TotalPixels += other.TotalPixels
	fs.PrimaryHits += other.PrimaryHits
	fs.ShadowRays += other.ShadowRays
	fs.ShadowedPixels += other.ShadowedPixels
}

// HitRatio returns the fraction of pixels whose primary ray hit something
func (fs FrameStats) HitRatio() float64 {
	if fs.TotalPixels == 0 {
		return 0
	}
	return float64(fs.PrimaryHits) / float64(fs.TotalPixels)
}
