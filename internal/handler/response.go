package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

// Response is the envelope every endpoint returns. Code carries the
// machine-readable error code on failures and is omitted on success.
type Response struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(code apperrors.Code, message string) *Response {
	return &Response{
		Status:  "error",
		Code:    string(code),
		Message: message,
	}
}

// RespondError writes err using its taxonomy code and mapped HTTP status.
// Anything that is not an AppError is hidden behind a generic 500.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Code, appErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse("INTERNAL", "internal server error"))
}

// RespondBindError wraps a request binding failure as a 400 with the
// validator's message.
func RespondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, NewErrorResponse(apperrors.CodeBadRequest, err.Error()))
}
