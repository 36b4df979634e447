package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Profile returns the authenticated principal's projection.
func (h *Handler) Profile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, userPayload(p))
}
