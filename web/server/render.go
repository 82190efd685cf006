package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/output"
	"github.com/df07/go-cpu-raytracer/pkg/renderer"
)

// FrameUpdate represents a single rendered frame sent via SSE
type FrameUpdate struct {
	FrameNumber int    `json:"frameNumber"` // 1-based
	TotalFrames int    `json:"totalFrames"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a single frame and returns it as PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	raytracer, err := s.createRaytracer(req, core.NopLogger{})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	parallel := renderer.NewParallelRenderer(raytracer, renderer.ParallelConfig{TileSize: DefaultTileSize}, nil)
	defer parallel.Close()

	// Use request context to detect client disconnection
	frame, stats, err := parallel.Render(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	data, err := output.EncodePNG(output.ToRGBA(frame, req.Gamma))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Rendered %s %dx%d in %v", req.Scene, req.Width, req.Height, stats.Duration)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Primary-Hits", strconv.Itoa(stats.PrimaryHits))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleStream renders frames while orbiting the camera around the scene origin
// and streams them via SSE together with console output
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(w, ctx, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	// Parse and validate request
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	frames, err := parseIntParam(r.URL.Query(), "frames", 12, 1, MaxFrames)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging()
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
		close(consoleDone)
	}()
	defer func() {
		stopConsole()
		<-consoleDone
	}()

	raytracer, err := s.createRaytracer(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}
	parallel := renderer.NewParallelRenderer(raytracer, renderer.ParallelConfig{TileSize: DefaultTileSize}, webLogger)
	defer parallel.Close()

	cameras := make(chan *renderer.Camera, frames)
	for _, camera := range orbitCameras(req.camera(), frames) {
		cameras <- camera
	}
	close(cameras)

	// Start rendering and stream events
	startTime := time.Now()
	frameChan, errChan := parallel.RenderFrames(ctx, cameras)

	for result := range frameChan {
		s.handleFrameComplete(ctx, sseEventChan, result, frames, req.Gamma, startTime)
	}
	if err := <-errChan; err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	// Send completion event
	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// orbitCameras returns frames cameras on a circle around the Y axis through
// start's position, each looking at the origin
func orbitCameras(start *renderer.Camera, frames int) []*renderer.Camera {
	radius := math.Hypot(start.Position.X, start.Position.Z)
	startAngle := math.Atan2(start.Position.Z, start.Position.X)
	target := core.NewVec3(0, 0, 0)

	cameras := make([]*renderer.Camera, 0, frames)
	for i := 0; i < frames; i++ {
		angle := startAngle + 2*math.Pi*float64(i)/float64(frames)
		position := core.NewVec3(radius*math.Cos(angle), start.Position.Y, radius*math.Sin(angle))

		camera := renderer.NewCameraFromAngles(position, start.Yaw, start.Pitch, start.Fov)
		camera.LookAt(target)
		cameras = append(cameras, camera)
	}
	return cameras
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Write SSE event
			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards console messages until ctx is done
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			// Send to unified SSE channel
			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleFrameComplete encodes a frame and sends it as an SSE event
func (s *Server) handleFrameComplete(ctx context.Context, sseEventChan chan SSEEvent, result renderer.FrameResult, totalFrames int, gamma float64, startTime time.Time) {
	data, err := output.EncodePNG(output.ToRGBA(result.Frame, gamma))
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Failed to encode frame: %v", err))
		return
	}

	update := FrameUpdate{
		FrameNumber: result.FrameNumber,
		TotalFrames: totalFrames,
		ImageData:   base64.StdEncoding.EncodeToString(data),
		Stats:       newStats(result.Stats),
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	}

	updateData, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "frame", Data: string(updateData)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the client
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}
