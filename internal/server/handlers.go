package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/pipeline"
	"github.com/crisiswatch/crisiswatch/internal/worker"
)

// maxBatchSize caps one batch request; larger batches belong in the CLI
const maxBatchSize = 20

type checkRequest struct {
	Claim string `json:"claim" binding:"required"`
}

type batchRequest struct {
	Claims []string `json:"claims" binding:"required"`
}

type batchItem struct {
	Claim  string      `json:"claim"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (s *Server) handleCheck(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be JSON with a \"claim\" field"})
		return
	}

	result, err := s.pipeline.CheckClaim(c.Request.Context(), req.Claim)
	if err != nil {
		s.renderCheckError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCheckBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Claims) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be JSON with a non-empty \"claims\" array"})
		return
	}
	if len(req.Claims) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many claims in one batch"})
		return
	}

	processor := worker.NewBatchProcessor(s.pipeline, 4)
	outcomes := processor.ProcessClaims(c.Request.Context(), req.Claims)

	items := make([]batchItem, 0, len(outcomes))
	for _, outcome := range outcomes {
		item := batchItem{Claim: outcome.Text}
		if outcome.Error != nil {
			item.Error = outcome.Error.Error()
		} else {
			item.Result = outcome.Result
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"results": items})
}

// handleCheckStream pushes one server-sent event per pipeline state. Client
// disconnect cancels the run and all its in-flight calls.
func (s *Server) handleCheckStream(c *gin.Context) {
	claimText := c.Query("claim")
	if claimText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing \"claim\" query parameter"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan pipeline.Event, 16)
	go func() {
		defer close(events)
		_, err := s.pipeline.Check(ctx, claimText, func(ev pipeline.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})

		// Validation errors are rejected before the first event; give the
		// stream consumer a terminal event anyway.
		var validationErr *pipeline.ValidationError
		if errors.As(err, &validationErr) {
			select {
			case events <- pipeline.Event{
				State:     pipeline.StateFailed,
				Error:     validationErr.Error(),
				Timestamp: time.Now().UTC(),
			}:
			case <-ctx.Done():
			}
		}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(string(ev.State), ev)
		return true
	})
}

func (s *Server) handleTrending(c *gin.Context) {
	limit := s.cfg.TrendingLimit
	if limit <= 0 {
		limit = 10
	}
	c.JSON(http.StatusOK, gin.H{"trending": s.trends.List(limit)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	hits, misses, size := s.pipeline.CacheStats()
	verdicts, severities := s.pipeline.Counts()
	c.JSON(http.StatusOK, gin.H{
		"cache": gin.H{
			"hits":   hits,
			"misses": misses,
			"size":   size,
		},
		"verdicts":        verdicts,
		"severities":      severities,
		"trending_claims": s.trends.Len(),
		"sources":         s.pipeline.SourceCount(),
		"uptime_seconds":  int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) renderCheckError(c *gin.Context, err error) {
	var validationErr *pipeline.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		s.logger.Error("check failed", zap.String("stage", string(stageErr.State)), zap.Error(stageErr.Err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "verification failed",
			"stage": string(stageErr.State),
		})
		return
	}

	s.logger.Error("check failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
