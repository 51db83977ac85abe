// Package api provides the REST API server for digital-composer
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Kingdread/digital-composer/pkg/composer"
	"github.com/Kingdread/digital-composer/pkg/midifile"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Digital Composer API
// @version 1.0
// @description API for composing new melodies from the tracks of MIDI files
// @host localhost:8080
// @BasePath /api/v1

// maxUploadSize bounds the accepted MIDI upload
const maxUploadSize = 8 << 20

const requestIDHeader = "X-Request-ID"

// composeQuery holds the composition options accepted as query parameters
type composeQuery struct {
	Track   uint16 `form:"track"`
	Degree  int    `form:"degree,default=1" binding:"min=1"`
	Length  int    `form:"length,default=100" binding:"min=0,max=100000"`
	Voices  int    `form:"voices,default=1" binding:"min=1,max=16"`
	Seed    uint64 `form:"seed"`
	OnStall string `form:"on_stall,default=fail" binding:"oneof=fail reseed"`
}

func (q composeQuery) options() composer.Options {
	return composer.Options{
		Track:   q.Track,
		Degree:  q.Degree,
		Length:  q.Length,
		Voices:  q.Voices,
		Seed:    q.Seed,
		OnStall: composer.StallPolicy(q.OnStall),
	}
}

// Server serves the API. A nil logger means log.Default().
type Server struct {
	logger *log.Logger
}

// NewServer creates a Server
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger}
}

// Router builds the gin engine with all routes
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/options", defaultOptions)
		v1.POST("/compose", s.handleCompose)
		v1.POST("/notes", s.handleNotes)
		v1.POST("/tracks", s.handleTracks)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Handler wraps the router with CORS handling
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{requestIDHeader, "Content-Disposition"},
	})
	return c.Handler(s.Router())
}

// StartServer starts the API server on the specified port
func StartServer(port int, logger *log.Logger) error {
	s := NewServer(logger)
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("starting API server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "digital-composer",
	})
}

// defaultOptions godoc
// @Summary Default composition options
// @Description Returns the options used for parameters that are not given
// @Tags info
// @Produce json
// @Success 200 {object} composer.Options
// @Router /api/v1/options [get]
func defaultOptions(c *gin.Context) {
	c.JSON(http.StatusOK, composer.DefaultOptions())
}

// handleCompose godoc
// @Summary Compose a melody
// @Description Upload a MIDI file; a Markov chain is trained on one of its tracks and a new MIDI file is returned
// @Tags compose
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "MIDI file to learn from"
// @Param track query int false "Track index (default: 0)"
// @Param degree query int false "Markov chain degree (default: 1)"
// @Param length query int false "Pitches per voice (default: 100)"
// @Param voices query int false "Number of voices (default: 1)"
// @Param seed query int false "Random seed, 0 for random (default: 0)"
// @Param on_stall query string false "fail or reseed (default: fail)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/compose [post]
func (s *Server) handleCompose(c *gin.Context) {
	var q composeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, ok := readUpload(c)
	if !ok {
		return
	}

	comp := composer.New(q.options(), s.logger)
	var out bytes.Buffer
	if err := comp.ComposeMIDI(bytes.NewReader(data), &out); err != nil {
		s.fail(c, err)
		return
	}

	outputName := fmt.Sprintf("composition-%s.mid", uuid.NewString()[:8])
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, "audio/midi", out.Bytes())
}

// handleNotes godoc
// @Summary Decode the notes of a track
// @Description Upload a MIDI file and receive the pitches of the note-on events of one track
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Param track query int false "Track index (default: 0)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/notes [post]
func (s *Server) handleNotes(c *gin.Context) {
	var q struct {
		Track uint16 `form:"track"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, ok := readUpload(c)
	if !ok {
		return
	}

	notes, err := midifile.ReadNotes(data, q.Track)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"track": q.Track,
		"notes": notes.Ints(),
	})
}

// handleTracks godoc
// @Summary List the tracks of a MIDI file
// @Description Upload a MIDI file and receive a summary of every track
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Success 200 {object} map[string][]midifile.TrackSummary
// @Failure 400 {object} map[string]string
// @Router /api/v1/tracks [post]
func (s *Server) handleTracks(c *gin.Context) {
	data, ok := readUpload(c)
	if !ok {
		return
	}

	summaries, err := midifile.Inspect(data)
	if err != nil {
		s.logger.Warn("inspect failed", "request_id", c.GetString("request_id"), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": summaries})
}

func readUpload(c *gin.Context) ([]byte, bool) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, false
	}
	if len(data) > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return nil, false
	}
	return data, true
}

// fail maps an error from decoding or composing to a response.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case midifile.IsDecodeError(err),
		errors.Is(err, composer.ErrSequenceTooShort),
		errors.Is(err, composer.ErrInvalidDegree):
		status = http.StatusBadRequest
	case errors.Is(err, composer.ErrStalledGeneration):
		status = http.StatusUnprocessableEntity
	}

	s.logger.Warn("request failed", "request_id", c.GetString("request_id"), "status", status, "err", err)
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

// errorMessage joins an error and its causes, skipping repeated text.
func errorMessage(err error) string {
	parts := []string{}
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if len(parts) > 0 && strings.Contains(parts[len(parts)-1], msg) {
			continue
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, ": ")
}
