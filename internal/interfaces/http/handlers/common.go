// Common helper functions for HTTP handlers.

package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/pkg/errors"
)

// ErrorResponse is the standard error response body.  The browser client
// only reads error; code and detail are for operators.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ListResponse wraps every list endpoint's payload.
type ListResponse struct {
	Results interface{} `json:"results"`
}

// parseLimit reads the limit query parameter.  Missing or malformed values
// return 0, which the service resolves to its default.
func parseLimit(c *gin.Context) int {
	v := c.Query("limit")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// writeAppError maps an error to its HTTP status through its code.  Errors
// that carry no code are masked as internal errors.
func writeAppError(c *gin.Context, log logging.Logger, err error) {
	_ = c.Error(err)

	var ae *errors.AppError
	if !stderrors.As(err, &ae) || ae.Code == errors.CodeInternal {
		log.Error("request failed", logging.String("path", c.FullPath()), logging.Err(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  errors.CodeInternal.String(),
		})
		return
	}

	status := errors.HTTPStatusForCode(ae.Code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logging.String("path", c.FullPath()), logging.Err(err))
	}
	c.JSON(status, ErrorResponse{
		Error:  ae.Message,
		Code:   ae.Code.String(),
		Detail: ae.Detail,
	})
}

// writeBadRequest answers 400 with a validation error.
func writeBadRequest(c *gin.Context, message, detail string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  message,
		Code:   errors.CodeInvalidParam.String(),
		Detail: detail,
	})
}

//Personal.AI order the ending
