package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spreadlabs/spread-engine/internal/common"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Error writes a mapped HTTP error into the envelope. Status code and
// message come from the common.HttpError, so handlers never pick raw status
// codes themselves.
func Error(c *gin.Context, err *common.HttpError) {
	c.JSON(err.StatusCode, Response{
		Success: false,
		Error:   err.Message,
	})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, common.HTTPErrorBadRequest(msg))
}

func Unprocessable(c *gin.Context, msg string) {
	Error(c, common.HTTPErrorUnprocessable(msg))
}

func InternalError(c *gin.Context, msg string) {
	Error(c, common.HTTPErrorInternalError(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, common.HTTPErrorNotFound(msg))
}
