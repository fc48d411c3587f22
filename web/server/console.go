package server

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"
)

// Console message levels
const (
	LevelInfo     = "info"
	LevelProgress = "progress"
	LevelWarning  = "warning"
	LevelError    = "error"
)

// ConsoleMessage is one line of render output shown in the browser console
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Pass      int       `json:"pass,omitempty"` // Set on per-pass progress lines
}

// WebLogger forwards render log lines to a console channel without blocking the renderer
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	dropped     atomic.Int64
}

// NewWebLogger creates a logger for one render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf formats a log line, mirrors it to the server log and queues it for the console
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	log.Printf("[%s] %s", wl.renderID, message)

	if wl.consoleChan == nil {
		return
	}
	level, pass := classifyMessage(message)
	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
		Pass:      pass,
	}:
	default:
		wl.dropped.Add(1)
	}
}

// Dropped returns how many messages were discarded because the console was full
func (wl *WebLogger) Dropped() int64 {
	return wl.dropped.Load()
}

// classifyMessage picks a console level for a progressive renderer log line
func classifyMessage(message string) (level string, pass int) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "failed") || strings.Contains(lower, "error"):
		return LevelError, 0
	case strings.Contains(lower, "cancelled"):
		return LevelWarning, 0
	}

	if _, err := fmt.Sscanf(message, "Pass %d", &pass); err == nil && pass > 0 {
		return LevelProgress, pass
	}
	return LevelInfo, 0
}
