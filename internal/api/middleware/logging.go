package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// LogApi logs one line per request in a key=value shape that matches the
// service's slog output.
func LogApi() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		line := fmt.Sprintf("time=%s status=%d method=%s path=%s ip=%s latency=%s",
			param.TimeStamp.Format(time.RFC3339),
			param.StatusCode,
			param.Method,
			param.Path,
			param.ClientIP,
			param.Latency,
		)
		if param.ErrorMessage != "" {
			line += fmt.Sprintf(" error=%q", param.ErrorMessage)
		}
		return line + "\n"
	})
}
