package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/library-api/internal/apperr"
)

// respondError writes err as JSON. Unexpected failures are logged and reported generically.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	ae := apperr.From(err)
	if ae.Code == apperr.CodeInternalError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.JSON(ae.Code, ae)
}

func abortWithError(c *gin.Context, log zerolog.Logger, err error) {
	respondError(c, log, err)
	c.Abort()
}

// bindJSON decodes and validates the request body into dst
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.FromBinding(err)
	}
	return nil
}
