package matchmaker

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"BlockMatch/internal/engine"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /match/join  body: {playerId, mode, role, timeoutSec}
// 长轮询：阻塞到终态（matched / timed_out / cancelled / closed）
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.Join(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, JoinResponse{
		State:   out.State,
		MatchID: out.MatchID,
		Peers:   out.Peers,
		Mode:    req.Mode,
		Role:    req.Role,
	})
}

// POST /match/cancel body: {playerId}
func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	removed := h.svc.Cancel(c.Request.Context(), req.PlayerID)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// GET /match/stats
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

// 错误分类 -> HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidMode), errors.Is(err, engine.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrAlreadyQueued), errors.Is(err, engine.ErrQueueFull):
		return http.StatusConflict
	case errors.Is(err, engine.ErrBusy), errors.Is(err, engine.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
