package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shodhmemory/engine/internal/doctor"
	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/retrieval"
)

type rememberRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// rememberHandler implements POST /api/remember: store (simple).
func (s *Server) rememberHandler(c *gin.Context) {
	var req rememberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}

	rec, err := s.engine.Remember(c.Request.Context(), recordOptionsFrom(req.UserID, req.Content, "", nil, nil, nil))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, rec)
}

type recordRequest struct {
	UserID     string                 `json:"user_id" binding:"required"`
	Content    string                 `json:"content" binding:"required"`
	MemoryType string                 `json:"memory_type"`
	Tags       []string               `json:"tags"`
	Metadata   map[string]interface{} `json:"metadata"`
	Geo        *model.GeoPoint        `json:"geo"`
}

// recordHandler implements POST /api/record: store with metadata.
func (s *Server) recordHandler(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}

	rec, err := s.engine.Remember(c.Request.Context(), recordOptionsFrom(req.UserID, req.Content, req.MemoryType, req.Tags, req.Metadata, req.Geo))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, rec)
}

func recordOptionsFrom(userID, content, memType string, tags []string, metadata map[string]interface{}, geo *model.GeoPoint) engine.RememberOptions {
	return engine.RememberOptions{
		UserID:     userID,
		Content:    content,
		MemoryType: model.MemoryType(memType),
		Tags:       tags,
		Metadata:   metadata,
		Geo:        geo,
	}
}

type recallRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Query  string `json:"query" binding:"required"`
	Mode   string `json:"mode"`
	Limit  int    `json:"limit"`
}

// recallHandler implements POST /api/recall: semantic/hybrid search.
func (s *Server) recallHandler(c *gin.Context) {
	var req recallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}

	results, err := s.engine.Recall(c.Request.Context(), engine.RecallOptions{
		UserID: req.UserID,
		Query:  req.Query,
		Mode:   retrieval.Mode(req.Mode),
		Limit:  req.Limit,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, results)
}

type retrieveRequest struct {
	UserID           string `json:"user_id" binding:"required"`
	Tags             []string `json:"tags"`
	MemoryType       string   `json:"memory_type"`
	ImportanceBucket *int     `json:"importance_bucket"`
	Mode             string   `json:"mode"`
	Limit            int      `json:"limit"`
}

// retrieveHandler implements POST /api/retrieve: search with filters.
func (s *Server) retrieveHandler(c *gin.Context) {
	var req retrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}

	results, err := s.engine.Retrieve(c.Request.Context(), engine.RecallOptions{
		UserID:           req.UserID,
		Tags:             req.Tags,
		MemoryType:       model.MemoryType(req.MemoryType),
		ImportanceBucket: req.ImportanceBucket,
		Mode:             retrieval.Mode(req.Mode),
		Limit:            req.Limit,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, results)
}

type proactiveContextRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Limit  int    `json:"limit"`
}

// proactiveContextHandler implements POST /api/proactive_context:
// summary for session bootstrap.
func (s *Server) proactiveContextHandler(c *gin.Context) {
	var req proactiveContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}

	results, err := s.engine.ProactiveContext(c.Request.Context(), req.UserID, req.Limit)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, results)
}

// getMemoryHandler implements GET /api/memory/{id}?user_id=....
func (s *Server) getMemoryHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "user_id query parameter is required"})
		return
	}
	rec, err := s.engine.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, rec)
}

// deleteMemoryHandler implements DELETE /api/memory/{id}?user_id=...: forget.
func (s *Server) deleteMemoryHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "user_id query parameter is required"})
		return
	}
	if err := s.engine.Forget(c.Request.Context(), userID, c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"deleted": true})
}

// userStatsHandler implements GET /api/users/{id}/stats.
func (s *Server) userStatsHandler(c *gin.Context) {
	stats, err := s.engine.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, stats)
}

// healthHandler implements GET /health: liveness plus the dependency
// readiness report from doctor.Run, answered with 503 when any check
// is down. It does not check the vector index or stored records for
// corruption.
func (s *Server) healthHandler(c *gin.Context) {
	report := doctor.Run(s.cfg)
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
