package response

import (
	"net/http"

	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Envelope is the success body shared by the mutating endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is returned for every failed request. "detail" matches what the
// admin panel reads.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// Success writes a {success, message, data} envelope.
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// OK writes data as-is with 200.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)

	if kind == apperror.KindInternal {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	c.JSON(kind.Status(), ErrorBody{
		Success: false,
		Error:   kind.String(),
		Detail:  apperror.MessageOf(err),
	})
}

// Abort writes the error and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, err error) {
	ResponseError(c, err)
	c.Abort()
}
