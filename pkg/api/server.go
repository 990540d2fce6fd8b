// Package api provides the REST API server for measureedit
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gin-gonic/gin"
	"github.com/james-see/measureedit/pkg/config"
	"github.com/james-see/measureedit/pkg/converter"
	"github.com/james-see/measureedit/pkg/notation"
	"github.com/james-see/measureedit/pkg/render"
	"github.com/james-see/measureedit/pkg/score"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title measureedit API
// @version 1.0
// @description API for editing a score of balanced measures
// @host localhost:8080
// @BasePath /api/v1

// Server serves one in-memory score. Every handler holds the lock while it
// touches the score.
type Server struct {
	mu    sync.Mutex
	score *score.Score
	conv  *converter.Converter
}

// NewServer wraps a score and the converter used by the export routes
func NewServer(s *score.Score, conv *converter.Converter) *Server {
	return &Server{score: s, conv: conv}
}

// NewScore builds the score a server starts with from config
func NewScore(cfg config.Config, opts ...score.Option) (*score.Score, error) {
	clef, err := notation.ParseClef(cfg.Clef)
	if err != nil {
		return nil, err
	}
	opts = append([]score.Option{
		score.WithClef(clef),
		score.WithPadding(cfg.NotePadding, cfg.MeasurePadding),
	}, opts...)
	return score.New(cfg.X, cfg.Y, cfg.MeasureWidth, cfg.TimeSignature, opts...)
}

// StartServer starts the API server on the configured port
func StartServer(cfg config.Config) error {
	s, err := NewScore(cfg)
	if err != nil {
		return fmt.Errorf("failed to create score: %w", err)
	}
	conv := converter.New(converter.Options{Tempo: cfg.Tempo})

	srv := NewServer(s, conv)
	return http.ListenAndServe(":"+cfg.Server.Port, srv.Handler())
}

// Handler returns the router wrapped in CORS handling
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.Router())
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/score", s.getScore)
		v1.POST("/measures", s.addMeasure)
		v1.GET("/measures/:index", s.getMeasure)
		v1.GET("/measures/:index/text", s.getMeasureText)
		v1.POST("/measures/:index/notes", s.addNote)
		v1.PUT("/measures/:index/events/:id/duration", s.changeDuration)
		v1.GET("/formats", s.listFormats)
		v1.GET("/export/:format", s.export)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// MeasureView is the JSON form of a measure
type MeasureView struct {
	Index      int              `json:"index"`
	Clef       string           `json:"clef"`
	TotalTicks int              `json:"totalTicks"`
	Staff      StaffView        `json:"staff"`
	Events     []notation.Event `json:"events"`
}

// StaffView is the drawn frame of a measure
type StaffView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// ScoreView is the JSON form of the score
type ScoreView struct {
	TimeSignature string        `json:"timeSignature"`
	Measures      []MeasureView `json:"measures"`
}

// AddNoteRequest adds pitches to an event
type AddNoteRequest struct {
	EventID  string   `json:"eventId" binding:"required"`
	Pitches  []string `json:"pitches" binding:"required"`
	Duration string   `json:"duration" binding:"required"`
}

// DurationRequest changes the length of an event
type DurationRequest struct {
	Duration string `json:"duration" binding:"required"`
}

func measureView(i int, m *notation.Measure) MeasureView {
	st := m.Staff()
	return MeasureView{
		Index:      i,
		Clef:       string(m.Clef()),
		TotalTicks: m.TotalTicks(),
		Staff:      StaffView{X: st.X, Y: st.Y, Width: st.Width},
		Events:     m.Events(),
	}
}

func (s *Server) scoreView() ScoreView {
	measures := s.score.Measures()
	view := ScoreView{
		TimeSignature: s.score.TimeSignature().String(),
		Measures:      make([]MeasureView, len(measures)),
	}
	for i, m := range measures {
		view.Measures[i] = measureView(i, m)
	}
	return view
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
		"service": "measureedit",
	})
}

// getScore godoc
// @Summary Get the score
// @Description Returns every measure with its events
// @Tags score
// @Produce json
// @Success 200 {object} ScoreView
// @Router /api/v1/score [get]
func (s *Server) getScore(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.scoreView())
}

// addMeasure godoc
// @Summary Append a measure
// @Description Appends an empty measure filled with rests
// @Tags score
// @Produce json
// @Success 201 {object} MeasureView
// @Failure 500 {object} map[string]string
// @Router /api/v1/measures [post]
func (s *Server) addMeasure(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.score.AddMeasure()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, measureView(s.score.Len()-1, m))
}

// getMeasure godoc
// @Summary Get a measure
// @Tags score
// @Produce json
// @Param index path int true "Measure index"
// @Success 200 {object} MeasureView
// @Failure 404 {object} map[string]string
// @Router /api/v1/measures/{index} [get]
func (s *Server) getMeasure(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, m, ok := s.measure(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, measureView(index, m))
}

// getMeasureText godoc
// @Summary Draw a measure as text
// @Tags score
// @Produce plain
// @Param index path int true "Measure index"
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Router /api/v1/measures/{index}/text [get]
func (s *Server) getMeasureText(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, m, ok := s.measure(c)
	if !ok {
		return
	}
	canvas := render.NewTextCanvas(false)
	if _, err := m.DrawOn(canvas, 0, 0); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, canvas.String()+"\n")
}

// addNote godoc
// @Summary Add pitches to an event
// @Description Turns a rest into a note or adds pitches to a note of the same length
// @Tags edit
// @Accept json
// @Produce json
// @Param index path int true "Measure index"
// @Param request body AddNoteRequest true "Event, pitches and duration"
// @Success 200 {object} MeasureView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/measures/{index}/notes [post]
func (s *Server) addNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(ftag.InvalidArgument)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.index(c)
	if !ok {
		return
	}
	if err := s.score.AddNoteInMeasure(index, req.Pitches, req.Duration, req.EventID); err != nil {
		writeError(c, err)
		return
	}
	m, _ := s.score.Measure(index)
	c.JSON(http.StatusOK, measureView(index, m))
}

// changeDuration godoc
// @Summary Change the duration of an event
// @Description Splits the event into shorter slots or grows it over the rests after it
// @Tags edit
// @Accept json
// @Produce json
// @Param index path int true "Measure index"
// @Param id path string true "Event id"
// @Param request body DurationRequest true "New duration code"
// @Success 200 {object} MeasureView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/measures/{index}/events/{id}/duration [put]
func (s *Server) changeDuration(c *gin.Context) {
	var req DurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(ftag.InvalidArgument)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.index(c)
	if !ok {
		return
	}
	if err := s.score.ModifyDurationInMeasure(index, req.Duration, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	m, _ := s.score.Measure(index)
	c.JSON(http.StatusOK, measureView(index, m))
}

// listFormats godoc
// @Summary List export formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func (s *Server) listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": s.conv.SupportedFormats(),
	})
}

// export godoc
// @Summary Export the score
// @Description Returns the score as a MIDI, PDF or text file
// @Tags export
// @Produce application/octet-stream
// @Param format path string true "midi, pdf or text"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/export/{format} [get]
func (s *Server) export(c *gin.Context) {
	format := converter.ParseFormat(c.Param("format"))

	s.mu.Lock()
	data, err := s.conv.Export(s.score, format)
	s.mu.Unlock()

	if errors.Is(err, converter.ErrUnsupportedFormat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(ftag.InvalidArgument)})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	var contentType, ext string
	switch format {
	case converter.FormatMIDI:
		contentType, ext = "audio/midi", ".mid"
	case converter.FormatPDF:
		contentType, ext = "application/pdf", ".pdf"
	default:
		contentType, ext = "text/plain; charset=utf-8", ".txt"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=score%s", ext))
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) index(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "measure index must be a number", "kind": string(ftag.InvalidArgument)})
		return 0, false
	}
	return index, true
}

func (s *Server) measure(c *gin.Context) (int, *notation.Measure, bool) {
	index, ok := s.index(c)
	if !ok {
		return 0, nil, false
	}
	m, err := s.score.Measure(index)
	if err != nil {
		writeError(c, err)
		return 0, nil, false
	}
	return index, m, true
}

// StatusFor maps an editor error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, notation.ErrInvalidDurationSplit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, notation.ErrInvariantViolation):
		return http.StatusInternalServerError
	}
	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		return http.StatusBadRequest
	case ftag.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	msg := fmsg.GetIssue(err)
	if msg == "" {
		msg = err.Error()
	}
	_ = c.Error(err)
	c.JSON(StatusFor(err), gin.H{"error": msg, "kind": string(ftag.Get(err))})
}
