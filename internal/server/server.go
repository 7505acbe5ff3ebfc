// Package server exposes the pipeline over HTTP. It translates transport
// concerns to the three pipeline entry points and maps error kinds to
// status codes; it holds no retrieval logic of its own.
package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"ragpipe/internal/domain"
	"ragpipe/internal/pipeline"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// IngestRequest is the body of POST /documents.
type IngestRequest struct {
	Documents []domain.Document `json:"documents" binding:"required"`
}

// Server serves the HTTP API around one pipeline instance.
type Server struct {
	pipe   *pipeline.Pipeline
	log    *log.Logger
	engine *gin.Engine
}

// New builds the router. Concurrent queries are safe; the pipeline
// serializes writes internally.
func New(pipe *pipeline.Pipeline, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{pipe: pipe, log: logger, engine: engine}
	engine.GET("/health", s.health)
	engine.POST("/query", s.query)
	engine.POST("/documents", s.ingest)
	engine.POST("/index/save", s.saveIndex)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.Info("http api listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "index_size": s.pipe.IndexSize()})
}

func (s *Server) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "query is required"})
		return
	}
	result, err := s.pipe.Answer(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		s.fail(c, "query", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "documents are required"})
		return
	}
	chunks, err := s.pipe.Ingest(c.Request.Context(), req.Documents)
	if err != nil {
		s.fail(c, "ingest", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": len(req.Documents), "chunks": chunks})
}

func (s *Server) saveIndex(c *gin.Context) {
	if err := s.pipe.SaveIndex(); err != nil {
		s.fail(c, "save index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": s.pipe.IndexSize()})
}

// fail maps pipeline error kinds to HTTP status codes. A failed answer is
// always an explicit error response, never a fabricated success.
func (s *Server) fail(c *gin.Context, op string, err error) {
	s.log.Error(op+" failed", "err", err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrProvider), errors.Is(err, domain.ErrGeneration):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
