package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsabonet/milagre-car-site/internal/logger"
	"github.com/jsabonet/milagre-car-site/internal/metrics"
	"github.com/jsabonet/milagre-car-site/internal/middleware"
)

// Logout revokes the caller's token. Revocation is best-effort: an
// already-absent token still answers success, logout never fails from
// the client's perspective.
func (h *Handler) Logout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	key := middleware.TokenKeyFromHeader(c.GetHeader("Authorization"))
	if key != "" {
		if err := h.manager.Revoke(c.Request.Context(), key); err != nil {
			logger.Warn("failed to revoke token during logout", map[string]any{
				"username": p.Username,
				"token":    logger.TokenPrefix(key),
				"error":    err.Error(),
			})
		} else {
			metrics.TokensRevoked.Inc()
		}
	}

	logger.Info("admin logout", map[string]any{
		"username": p.Username,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Logout realizado com sucesso"})
}
