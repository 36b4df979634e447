package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGate adapts the net/http Gate to Gin. The gate decision stays
// framework-agnostic; only the adapter knows about Gin.
func GinGate(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := gate.Intercept(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the gate already wrote the rejection, stop the Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
