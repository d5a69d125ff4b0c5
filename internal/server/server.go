// Package server exposes a handle registry over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/expki/llamabridge"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Bridge is the handle-based surface served over HTTP.
// *llamabridge.Registry satisfies it.
type Bridge interface {
	Create(path string, opts ...llamabridge.Option) (llamabridge.Handle, error)
	Generate(ctx context.Context, h llamabridge.Handle, prompt string) (llamabridge.Result, error)
	Destroy(h llamabridge.Handle) error
	Len() int
}

// Server holds the HTTP handlers for a Bridge.
type Server struct {
	bridge Bridge
	log    *logrus.Logger
}

// NewServer creates handlers backed by bridge.
func NewServer(bridge Bridge, log *logrus.Logger) *Server {
	return &Server{bridge: bridge, log: log}
}

type createRequest struct {
	ModelPath string `json:"model_path" binding:"required"`
}

type createResponse struct {
	Handle int64 `json:"handle"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Token int32  `json:"token"`
	Empty bool   `json:"empty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateSession handles POST /v1/sessions.
func (s *Server) CreateSession(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
		return
	}

	h, err := s.bridge.Create(req.ModelPath)
	if err != nil {
		s.log.WithError(err).WithField("model", req.ModelPath).Warn("create session failed")
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: codeFor(err)})
		return
	}

	s.log.WithFields(logrus.Fields{"model": req.ModelPath, "handle": int64(h)}).Info("session created")
	c.JSON(http.StatusCreated, createResponse{Handle: int64(h)})
}

// Generate handles POST /v1/sessions/:handle/generate.
func (s *Server) Generate(c *gin.Context) {
	h, ok := parseHandle(c)
	if !ok {
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
		return
	}

	res, err := s.bridge.Generate(c.Request.Context(), h, req.Prompt)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.WithError(err).WithField("handle", int64(h)).Error("generate failed")
		}
		c.JSON(status, errorResponse{Error: err.Error(), Code: codeFor(err)})
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		Text:  res.Text,
		Token: res.Token,
		Empty: res.Empty(),
	})
}

// DestroySession handles DELETE /v1/sessions/:handle.
func (s *Server) DestroySession(c *gin.Context) {
	h, ok := parseHandle(c)
	if !ok {
		return
	}

	if err := s.bridge.Destroy(h); err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error(), Code: codeFor(err)})
		return
	}

	s.log.WithField("handle", int64(h)).Info("session destroyed")
	c.Status(http.StatusNoContent)
}

// Health reports liveness and the number of open sessions.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.bridge.Len()})
}

func parseHandle(c *gin.Context) (llamabridge.Handle, bool) {
	id, err := strconv.ParseInt(c.Param("handle"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "handle must be an integer", Code: "bad_request"})
		return llamabridge.InvalidHandle, false
	}
	return llamabridge.Handle(id), true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, llamabridge.ErrInvalidHandle):
		return http.StatusNotFound
	case errors.Is(err, llamabridge.ErrSessionDestroyed):
		return http.StatusGone
	case errors.Is(err, llamabridge.ErrPromptTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, llamabridge.ErrTokenizeFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, llamabridge.ErrInvalidHandle):
		return "invalid_handle"
	case errors.Is(err, llamabridge.ErrSessionDestroyed):
		return "session_destroyed"
	case errors.Is(err, llamabridge.ErrPromptTooLong):
		return "prompt_too_long"
	case errors.Is(err, llamabridge.ErrTokenizeFailed):
		return "tokenize_failed"
	case errors.Is(err, llamabridge.ErrDecodeFailed):
		return "decode_failed"
	case errors.Is(err, llamabridge.ErrModelNotFound):
		return "model_not_found"
	default:
		var ctxErr *llamabridge.ContextInitError
		if errors.As(err, &ctxErr) {
			return "context_init_failed"
		}
		var loadErr *llamabridge.ModelLoadError
		if errors.As(err, &loadErr) {
			return "model_load_failed"
		}
		return "internal"
	}
}
