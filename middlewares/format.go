package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs an error and writes an HTTP error response to the client.
// details, when not nil, is returned to the client under "details".
func HttpError(c *gin.Context, message string, status int, err error, details interface{}) {
	event := log.Warn()
	if status >= 500 {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg(message)

	body := gin.H{"error": message}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}
