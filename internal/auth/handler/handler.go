package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsabonet/milagre-car-site/internal/auth"
	"github.com/jsabonet/milagre-car-site/internal/auth/credentials"
	"github.com/jsabonet/milagre-car-site/internal/middleware"
	"github.com/jsabonet/milagre-car-site/internal/token"
)

type Handler struct {
	verifier *credentials.Verifier
	manager  *token.Manager
}

func NewHandler(
	verifier *credentials.Verifier,
	manager *token.Manager,
) *Handler {
	return &Handler{
		verifier: verifier,
		manager:  manager,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth/login/", h.Login)
	r.POST("/api/auth/logout/", h.Logout)
	r.GET("/api/auth/profile/", h.Profile)
	r.GET("/api/auth/check-admin/", h.CheckAdmin)
	r.POST("/api/auth/refresh/", h.Refresh)
	r.GET("/api/auth/health-check/", h.HealthCheck)
}

// principal returns the gate-attached principal or answers 401 itself.
func principal(c *gin.Context) (*auth.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "As credenciais de autenticação não foram fornecidas.",
		})
		return nil, false
	}
	return p, true
}

func userPayload(p *auth.Principal) gin.H {
	return gin.H{
		"id":           p.ID,
		"username":     p.Username,
		"email":        p.Email,
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"is_staff":     p.IsStaff,
		"is_superuser": p.IsSuperuser,
	}
}

func expiresIn(ttl time.Duration) int {
	return int(ttl.Seconds())
}
