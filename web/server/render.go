package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
	"github.com/df07/go-ppm-raytracer/pkg/scene"
)

// DefaultRowsPerTask is the row block height used for web renders
const DefaultRowsPerTask = 16

// PassUpdate is sent via SSE after every progressive pass
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG of the whole image
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	PrimitiveCount int     `json:"primitiveCount"`
	IsComplete     bool    `json:"isComplete"`
}

// sseStream serializes Server-Sent Events onto a response
type sseStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}
	return &sseStream{w: w, flusher: flusher}, nil
}

// send writes one event; it is safe for concurrent use
func (st *sseStream) send(event, data string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := fmt.Fprintf(st.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	st.flusher.Flush()
	return nil
}

// handleRender handles progressive rendering with pass images streamed via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	stream, err := newSSEStream(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.setSSEHeaders(w)

	req, err := s.parseRenderRequest(r)
	if err != nil {
		stream.send("error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Console messages are forwarded until the render finishes
	consoleChan, webLogger := s.setupConsoleLogging()
	var forwarder sync.WaitGroup
	forwarder.Add(1)
	go func() {
		defer forwarder.Done()
		s.streamConsoleMessages(stream, consoleChan)
	}()
	stopConsole := func() {
		close(consoleChan)
		forwarder.Wait()
	}

	sceneObj, raytracer, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		stopConsole()
		stream.send("error", err.Error())
		return
	}

	ctx := r.Context()
	startTime := time.Now()
	passChan, errChan := raytracer.RenderProgressive(ctx)

	for passResult := range passChan {
		s.handlePassComplete(stream, passResult, req, sceneObj, startTime)
	}
	renderErr := <-errChan
	if renderErr != nil && ctx.Err() == nil {
		webLogger.Printf("Rendering failed: %v\n", renderErr)
	}
	stopConsole()
	if dropped := webLogger.Dropped(); dropped > 0 {
		log.Printf("Console dropped %d messages", dropped)
	}

	if ctx.Err() != nil {
		log.Printf("Render cancelled: %v", ctx.Err())
		return
	}
	if renderErr != nil {
		stream.send("error", fmt.Sprintf("Rendering failed: %v", renderErr))
		return
	}
	stream.send("complete", "Rendering completed")
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, *WebLogger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// streamConsoleMessages sends console messages as SSE events until consoleChan is closed
func (s *Server) streamConsoleMessages(stream *sseStream, consoleChan <-chan ConsoleMessage) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}
		// Write errors mean the client is gone; keep draining so the logger never blocks
		stream.send("console", string(data))
	}
}

// setupRenderingPipeline creates the scene and the progressive raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*scene.Scene, *renderer.ProgressiveRaytracer, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, nil, err
	}
	logger.Printf("Scene %s: %d primitives, %dx%d\n", sceneObj.Name, sceneObj.GetPrimitiveCount(), req.Width, req.Height)

	config := renderer.ProgressiveConfig{
		RowsPerTask:        DefaultRowsPerTask,
		InitialSamples:     1,
		MaxSamplesPerPixel: req.MaxSamples,
		MaxPasses:          req.MaxPasses,
		NumWorkers:         0, // Auto-detect
		Seed:               req.Seed,
	}

	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj, req.Width, req.Height, config, logger)
	if err != nil {
		return nil, nil, err
	}
	return sceneObj, raytracer, nil
}

// handlePassComplete encodes a pass image and sends it with the pass statistics
func (s *Server) handlePassComplete(stream *sseStream, passResult renderer.PassResult, req *RenderRequest, sceneObj *scene.Scene, startTime time.Time) {
	imageData, err := s.imageToBase64PNG(passResult.Image)
	if err != nil {
		log.Printf("Error encoding pass %d image: %v", passResult.PassNumber, err)
		return
	}

	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		ImageData:      imageData,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalPixels:    passResult.Stats.TotalPixels,
		TotalSamples:   passResult.Stats.TotalSamples,
		AverageSamples: passResult.Stats.AverageSamples,
		MinSamples:     passResult.Stats.MinSamples,
		MaxSamplesUsed: passResult.Stats.MaxSamplesUsed,
		PrimitiveCount: sceneObj.GetPrimitiveCount(),
		IsComplete:     passResult.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}
	stream.send("passComplete", string(data))
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	var err error
	query := r.URL.Query()
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 50, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 7, 1, 100); err != nil {
		return nil, err
	}
	if req.Seed, err = parseSeedParam(query, 42); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.MaxSamples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}
