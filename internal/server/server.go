package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mugil-an/carcheckmate/internal/model"
	"github.com/Mugil-an/carcheckmate/internal/pipeline"
	"github.com/Mugil-an/carcheckmate/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// allowedExtensions whitelists the upload types the scanner accepts.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".pdf":  true,
}

// Processor turns an uploaded document into a summary.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*model.DocumentSummary, error)
}

// EventLister exposes the persisted event history.
type EventLister interface {
	ListEvents() ([]store.ServiceEvent, error)
}

// Server is the HTTP upload boundary: documents come in, summaries and
// artifact links come out.
type Server struct {
	cfg      *model.Config
	proc     Processor
	renderer *pipeline.Renderer
	events   EventLister
	router   *gin.Engine
}

// New creates the server. A nil lister disables the /events route's
// database lookup.
func New(cfg *model.Config, proc Processor, events EventLister) *Server {
	s := &Server{
		cfg:      cfg,
		proc:     proc,
		renderer: pipeline.NewRenderer(cfg.Output.Dir),
		events:   events,
	}

	router := gin.Default()
	router.POST("/upload", s.handleUpload)
	router.GET("/events", s.handleEvents)
	router.Static("/files", cfg.Output.Dir)
	s.router = router

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the configured port.
func (s *Server) Run() error {
	return s.router.Run(":" + s.cfg.Server.Port)
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing document upload"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported file type %q", ext),
		})
		return
	}

	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prepare upload dir: " + err.Error()})
		return
	}

	jobID := uuid.New().String()
	stored := filepath.Join(s.cfg.Server.UploadDir, jobID+ext)
	if err := c.SaveUploadedFile(file, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store upload: " + err.Error()})
		return
	}

	summary, err := s.proc.ProcessFile(c.Request.Context(), stored)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "process document: " + err.Error()})
		return
	}

	arts, err := s.renderer.Render(summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "write artifacts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":     jobID,
		"input_file": file.Filename,
		"summary":    summary,
		"exports": gin.H{
			"json": "/files/" + filepath.Base(arts.JSONPath),
			"csv":  "/files/" + filepath.Base(arts.CSVPath),
		},
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	if s.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event persistence is not configured"})
		return
	}

	events, err := s.events.ListEvents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list events: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
