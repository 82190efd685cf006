package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// ErrRendererClosed is returned when rendering after Close
var ErrRendererClosed = errors.New("renderer closed")

// ParallelConfig contains configuration for parallel frame rendering
type ParallelConfig struct {
	TileSize   int // Size of each tile (64x64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultParallelConfig returns sensible default values
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// ParallelRenderer renders frames by splitting them into tiles and rendering
// the tiles on a worker pool. Each pixel depends only on its own ray and the
// read-only scene, so the output is identical to Raytracer.RenderFrame.
type ParallelRenderer struct {
	mu        sync.Mutex // Serializes frames and camera changes
	raytracer *Raytracer
	config    ParallelConfig
	tiles     []*Tile
	pool      *WorkerPool
	started   bool
	closed    bool
	logger    core.Logger
}

// FrameResult contains one frame produced by RenderFrames
type FrameResult struct {
	FrameNumber int // 1-based
	Frame       *FrameBuffer
	Stats       FrameStats
	Camera      Camera
}

// NewParallelRenderer creates a parallel renderer around a raytracer
func NewParallelRenderer(raytracer *Raytracer, config ParallelConfig, logger core.Logger) *ParallelRenderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultParallelConfig().TileSize
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	width, height := raytracer.Size()
	tiles := NewTileGrid(width, height, config.TileSize)

	return &ParallelRenderer{
		raytracer: raytracer,
		config:    config,
		tiles:     tiles,
		pool:      NewWorkerPool(config.NumWorkers, len(tiles)),
		logger:    logger,
	}
}

// SetCamera changes the camera for subsequent frames. It waits for any frame in flight.
func (pr *ParallelRenderer) SetCamera(camera *Camera) error {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.raytracer.SetCamera(camera)
}

// NumWorkers returns the number of workers rendering tiles
func (pr *ParallelRenderer) NumWorkers() int {
	return pr.pool.GetNumWorkers()
}

// Render renders a new frame
func (pr *ParallelRenderer) Render(ctx context.Context) (*FrameBuffer, FrameStats, error) {
	width, height := pr.raytracer.Size()
	frame, err := NewFrameBuffer(width, height)
	if err != nil {
		return nil, FrameStats{}, err
	}
	stats, err := pr.RenderInto(ctx, frame)
	if err != nil {
		return nil, FrameStats{}, err
	}
	return frame, stats, nil
}

// RenderInto overwrites every pixel of frame. Cancellation is checked per tile;
// a cancelled frame is left partially written and the context error is returned.
func (pr *ParallelRenderer) RenderInto(ctx context.Context, frame *FrameBuffer) (FrameStats, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.closed {
		return FrameStats{}, ErrRendererClosed
	}
	if !pr.started {
		pr.pool.Start()
		pr.started = true
	}

	pr.raytracer.fitFrame(frame)
	tileRenderer := NewTileRenderer(pr.raytracer)
	start := time.Now()

	for taskID, tile := range pr.tiles {
		pr.pool.SubmitTask(TileTask{
			Ctx:      ctx,
			Tile:     tile,
			TaskID:   taskID,
			Renderer: tileRenderer,
			Frame:    frame,
		})
	}

	// Drain every result so the pool is clean for the next frame
	var stats FrameStats
	var firstErr error
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.pool.GetResult()
		if !ok {
			return FrameStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.Add(result.Stats)
	}
	if firstErr != nil {
		return FrameStats{}, firstErr
	}

	stats.Duration = time.Since(start)
	pr.logger.Printf("Frame rendered in %v using %d workers over %d tiles\n",
		stats.Duration, pr.pool.GetNumWorkers(), len(pr.tiles))
	return stats, nil
}

// Close stops the worker pool. The renderer cannot be used afterwards.
func (pr *ParallelRenderer) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.closed {
		return
	}
	pr.closed = true
	if pr.started {
		pr.pool.Stop()
	}
}

// RenderFrames renders one frame per camera received, in order, until cameras
// is closed or ctx is cancelled. Every frame gets its own buffer.
// The caller should read from the returned channels until they are closed.
func (pr *ParallelRenderer) RenderFrames(ctx context.Context, cameras <-chan *Camera) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		frameNumber := 0
		for {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled after %d frames\n", frameNumber)
				errChan <- ctx.Err()
				return
			case camera, ok := <-cameras:
				if !ok {
					return
				}
				if err := pr.SetCamera(camera); err != nil {
					errChan <- err
					return
				}

				frame, stats, err := pr.Render(ctx)
				if err != nil {
					errChan <- err
					return
				}
				frameNumber++

				select {
				case frameChan <- FrameResult{
					FrameNumber: frameNumber,
					Frame:       frame,
					Stats:       stats,
					Camera:      *camera,
				}:
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				}
			}
		}
	}()

	return frameChan, errChan
}
