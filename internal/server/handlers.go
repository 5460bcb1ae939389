package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
)

const (
	minQueryLen       = 5
	defaultMaxResults = 10
	maxResultsCeiling = 10
)

type recommendRequest struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"max_results"`
}

type recommendResponse struct {
	Success         bool                 `json:"success"`
	Recommendations []catalog.Assessment `json:"recommendations"`
	Count           int                  `json:"count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	indexed := 0
	if s.info != nil {
		indexed = s.info.Count()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"model":               s.cfg.Model,
		"assessments_indexed": indexed,
	})
}

func (s *Server) handleRecommend(c *gin.Context) {
	if s.recommender == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "service not ready"})
		return
	}

	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < minQueryLen {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "query too short"})
		return
	}

	maxResults := defaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
		if maxResults < 1 {
			maxResults = 1
		}
		if maxResults > maxResultsCeiling {
			maxResults = maxResultsCeiling
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	recommendations, err := s.recommender.Recommend(ctx, query, maxResults)
	if err != nil {
		s.logger.Error("recommendation failed",
			zap.String("query", query),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if recommendations == nil {
		recommendations = []catalog.Assessment{}
	}

	c.JSON(http.StatusOK, recommendResponse{
		Success:         true,
		Recommendations: recommendations,
		Count:           len(recommendations),
	})
}
