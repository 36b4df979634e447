package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsabonet/milagre-car-site/internal/logger"
	"github.com/jsabonet/milagre-car-site/internal/metrics"
	"github.com/jsabonet/milagre-car-site/internal/middleware"
	"github.com/jsabonet/milagre-car-site/internal/token"
)

// CheckAdmin reports the caller's privilege flags. The token is
// re-evaluated through the lifecycle manager so expiry semantics live
// in exactly one place; an expired token is deleted here and now.
func (h *Handler) CheckAdmin(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	key := middleware.TokenKeyFromHeader(c.GetHeader("Authorization"))

	// One read serves both the validity decision and the creation
	// timestamp, so a concurrent logout cannot slip in between.
	_, stored, err := h.manager.EvaluateToken(c.Request.Context(), key)

	switch {
	case err == nil:
		// token still valid

	case errors.Is(err, token.ErrExpired), errors.Is(err, token.ErrNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token expirado. Faça login novamente.",
			"code":  "TOKEN_EXPIRED",
		})
		return

	default:
		logger.Error("failed to check admin status", map[string]any{
			"username": p.Username,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_admin":      p.IsAdmin(),
		"username":      p.Username,
		"user_id":       p.ID,
		"token_valid":   true,
		"token_created": stored.CreatedAt.Format(time.RFC3339),
	})
}

// Refresh rotates the caller's token: old one revoked, new one issued.
func (h *Handler) Refresh(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := p.RequireAdmin(); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
		return
	}

	t, err := h.manager.Renew(c.Request.Context(), p)
	if err != nil {
		logger.Error("failed to renew token", map[string]any{
			"username": p.Username,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao renovar token"})
		return
	}

	metrics.TokensIssued.Inc()
	logger.Info("token renewed", map[string]any{
		"username": p.Username,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":         t.Key,
		"message":       "Token renovado com sucesso",
		"expires_in":    expiresIn(h.manager.TTL()),
		"token_created": t.CreatedAt.Format(time.RFC3339),
	})
}
