package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/session"
)

type handlers struct {
	s *Server
}

func newHandlers(s *Server) *handlers {
	return &handlers{s: s}
}

// Root returns service identity.
func (h *handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "vshell",
		"version": "1.0.0",
		"status":  "running",
	})
}

// Health reports liveness.
func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": len(h.s.sessions.List()),
	})
}

// ListCommands returns the routable command table.
func (h *handlers) ListCommands(c *gin.Context) {
	infos := h.s.interp.Router().ListCommands()
	out := make([]gin.H, 0, len(infos))
	for _, info := range infos {
		out = append(out, gin.H{"name": info.Name, "category": info.Category.String()})
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

type createSessionRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
}

// CreateSession opens a new shell session for a project.
func (h *handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := h.s.sessions.Create(req.ProjectID)
	h.s.metrics.IncSessionsTotal()
	h.s.metrics.SetSessionsActive(len(h.s.sessions.List()))
	h.s.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("project_id", sess.ProjectID),
	)
	c.JSON(http.StatusCreated, sess)
}

// ListSessions returns every live session.
func (h *handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.s.sessions.List()})
}

// GetSession returns one session by id.
func (h *handlers) GetSession(c *gin.Context) {
	sess, err := h.s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteSession interrupts and drops a session.
func (h *handlers) DeleteSession(c *gin.Context) {
	if err := h.s.sessions.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.s.metrics.SetSessionsActive(len(h.s.sessions.List()))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// InterruptSession cancels the session's running command.
func (h *handlers) InterruptSession(c *gin.Context) {
	sess, err := h.s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interrupted": sess.Interrupt()})
}

type executeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Command   string `json:"command" binding:"required"`
}

// Execute runs one command line in a session.
func (h *handlers) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.s.sessions.Get(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx, release, err := sess.BeginCommand(c.Request.Context())
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer release()

	start := time.Now()
	res := h.s.interp.Run(ctx, sess, req.Command)
	h.s.metrics.RecordCommand(firstToken(req.Command), strconv.Itoa(res.Code), time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
		"exit_code": res.Code,
		"cwd":       sess.Cwd,
	})
}

func firstToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
