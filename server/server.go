// Package server exposes the question-answering engine over HTTP. The
// surface mirrors the common document-QA service shape: ingest a document,
// query the corpus, check health.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
	"github.com/docqa-ai/docqa/pipeline"
)

// Answerer is the query pipeline as seen by the HTTP layer.
type Answerer interface {
	AnswerFiltered(ctx context.Context, questionText, documentFilter string) (*docqa.AnswerResult, error)
}

// Ingester ingests one document's text.
type Ingester interface {
	Ingest(ctx context.Context, documentName, text string) (int, error)
}

// Server is the HTTP front of the engine.
type Server struct {
	addr     string
	answerer Answerer
	ingester Ingester
	store    docqa.EvidenceStore
	engine   *gin.Engine
}

// Options configures the server.
type Options struct {
	Addr     string
	Answerer Answerer
	Ingester Ingester
	Store    docqa.EvidenceStore
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     opts.Addr,
		answerer: opts.Answerer,
		ingester: opts.Ingester,
		store:    opts.Store,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/query", s.handleQuery)
	s.engine.POST("/ingest", s.handleIngest)
	return s
}

// Run starts serving and blocks.
func (s *Server) Run() error {
	log.Info("starting docqa server on %s", s.addr)
	return s.engine.Run(s.addr)
}

// Handler exposes the underlying handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question       string `json:"question" binding:"required"`
	DocumentFilter string `json:"document_filter"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Question     string               `json:"question"`
	Answer       string               `json:"answer"`
	IsComplex    bool                 `json:"is_complex"`
	SubQuestions []string             `json:"sub_questions,omitempty"`
	Sources      []docqa.EvidenceItem `json:"sources"`
	Metadata     docqa.AnswerMetadata `json:"metadata"`
	Degraded     bool                 `json:"degraded,omitempty"`
}

// IngestRequest is the body of POST /ingest.
type IngestRequest struct {
	DocumentName string `json:"document_name" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

// IngestResponse is the body of a successful POST /ingest.
type IngestResponse struct {
	Status       string `json:"status"`
	DocumentName string `json:"document_name"`
	TotalChunks  int    `json:"total_chunks"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "docqa - agentic document QA",
		"endpoints": gin.H{
			"query":  "/query",
			"ingest": "/ingest",
			"health": "/health",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{"status": "healthy"}
	if s.store != nil {
		if stats, err := s.store.Stats(c.Request.Context()); err == nil {
			resp["evidence_items"] = stats.TotalItems
		} else {
			resp["status"] = "degraded"
			resp["store_error"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	result, err := s.answerer.AnswerFiltered(c.Request.Context(), req.Question, req.DocumentFilter)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, pipeline.ErrTimeout):
			status = http.StatusGatewayTimeout
		case errors.Is(err, pipeline.ErrRetrievalTotalFailure):
			status = http.StatusServiceUnavailable
		}
		log.Error("query failed: %v", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	subQuestions := make([]string, 0, len(result.SubQuestions))
	for _, sq := range result.SubQuestions {
		subQuestions = append(subQuestions, sq.Text)
	}

	c.JSON(http.StatusOK, QueryResponse{
		Question:     result.Question.Text,
		Answer:       result.Answer,
		IsComplex:    result.IsComplex,
		SubQuestions: subQuestions,
		Sources:      result.Sources,
		Metadata:     result.Metadata,
		Degraded:     result.Degraded,
	})
}

func (s *Server) handleIngest(c *gin.Context) {
	if s.ingester == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "ingestion is not enabled"})
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_name and text are required"})
		return
	}

	count, err := s.ingester.Ingest(c.Request.Context(), req.DocumentName, req.Text)
	if err != nil {
		log.Error("ingestion failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, IngestResponse{
		Status:       "success",
		DocumentName: req.DocumentName,
		TotalChunks:  count,
	})
}
