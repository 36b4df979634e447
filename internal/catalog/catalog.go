// Package catalog holds the dealership listing endpoints: cars,
// categories and contact messages. It is a thin collaborator of the
// auth core — reads are public, writes require an administrator that
// the request gate (or downstream check here) has identified.
package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsabonet/milagre-car-site/internal/auth"
	"github.com/jsabonet/milagre-car-site/internal/db"
	"github.com/jsabonet/milagre-car-site/internal/middleware"
)

type Handler struct {
	db *db.DB
}

func NewHandler(db *db.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/cars/", h.ListCars)
	r.GET("/api/cars/:id/", h.GetCar)
	r.POST("/api/cars/", h.CreateCar)
	r.PUT("/api/cars/:id/", h.UpdateCar)
	r.DELETE("/api/cars/:id/", h.DeleteCar)

	r.GET("/api/categories/", h.ListCategories)
	r.POST("/api/categories/", h.CreateCategory)
	r.DELETE("/api/categories/:id/", h.DeleteCategory)

	r.POST("/api/contact-messages/", h.CreateMessage)
	r.GET("/api/contact-messages/", h.ListMessages)
	r.PATCH("/api/contact-messages/:id/", h.MarkMessageRead)
}

// requireAdmin enforces write access. The gate only screens stale
// tokens; unauthenticated writes are rejected here, the authorization
// of record.
func requireAdmin(c *gin.Context) (*auth.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "As credenciais de autenticação não foram fornecidas.",
		})
		return nil, false
	}
	if err := p.RequireAdmin(); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
		return nil, false
	}
	return p, true
}

// pathID validates the :id route parameter as a UUID before it gets
// anywhere near a query. Malformed IDs cannot match a row, so they are
// answered 404 without touching storage.
func pathID(c *gin.Context, notFound string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return "", false
	}
	return id, true
}
