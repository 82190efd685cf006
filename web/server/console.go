package server

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// ConsoleMessage is a renderer log line forwarded to a streaming client
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger for one streamed render. Lines go to the
// server log and, when there is room, to the client's console channel.
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for the render identified by renderID
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger. It never blocks the renderer.
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", wl.renderID, strings.TrimRight(message, "\n"))

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     messageLevel(message),
	}:
	default:
		// Client is behind, drop the line
	}
}

// messageLevel derives a console level from the wording of a log line
func messageLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "failed"):
		return "error"
	case strings.Contains(lower, "warning") || strings.Contains(lower, "cancelled"):
		return "warning"
	default:
		return "info"
	}
}
