package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns panics and errors attached with c.Error into a 500
// JSON body, unless the handler already answered.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "panic", rec, "path", c.Request.URL.Path, "stack", string(debug.Stack()))
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"message": "Internal server error",
						"level":   "error",
					})
				}
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, err := range c.Errors {
			slog.Error("request failed", "path", c.Request.URL.Path, "error", err.Err)
		}
		if !c.Writer.Written() && c.Writer.Status() == http.StatusOK {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Internal server error",
				"level":   "error",
			})
		}
	}
}
