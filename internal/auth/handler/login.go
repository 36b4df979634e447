package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsabonet/milagre-car-site/internal/auth/credentials"
	"github.com/jsabonet/milagre-car-site/internal/logger"
	"github.com/jsabonet/milagre-car-site/internal/metrics"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies admin credentials and issues a fresh session token,
// invalidating whatever token the principal held before.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Credenciais inválidas"})
		return
	}

	p, err := h.verifier.Verify(c.Request.Context(), req.Username, req.Password)

	switch {
	case err == nil:
		// fall through to the privilege check

	case errors.Is(err, credentials.ErrInvalidCredentials):
		metrics.Logins.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Credenciais inválidas"})
		return

	case errors.Is(err, credentials.ErrAccountDisabled):
		metrics.Logins.WithLabelValues("forbidden").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "Conta desativada"})
		return

	default:
		metrics.Logins.WithLabelValues("error").Inc()
		logger.Error("credential verification failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	// Privilege is checked here, after credential validation, so a wrong
	// password and a valid-but-unprivileged account answer differently.
	if err := p.RequireAdmin(); err != nil {
		metrics.Logins.WithLabelValues("forbidden").Inc()
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Acesso negado. Apenas administradores podem acessar.",
		})
		return
	}

	t, err := h.manager.Issue(c.Request.Context(), p)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		logger.Error("failed to issue token", map[string]any{
			"username": p.Username,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	metrics.TokensIssued.Inc()
	logger.Info("admin login", map[string]any{
		"username": p.Username,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"token":         t.Key,
		"user":          userPayload(p),
		"message":       "Login realizado com sucesso",
		"expires_in":    expiresIn(h.manager.TTL()),
		"token_created": t.CreatedAt.Format(time.RFC3339),
	})
}
