package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError translates the error taxonomy into an HTTP response.
// Internal failures get a generic message; validation errors keep per-field
// detail since it concerns only the caller's own input.
func RespondWithError(c *gin.Context, err error) {
	status := statusFor(errors.Code(err))

	message := err.Error()
	var fields map[string]string
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		fields = appErr.Fields
	}
	if status == http.StatusInternalServerError {
		message = "internal server error"
		fields = nil
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
			Fields:  fields,
		},
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, limit, offset int, total int64) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Data: data,
			Pagination: Pagination{
				Limit:  limit,
				Offset: offset,
				Total:  total,
			},
		},
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.CodeValidation:
		return http.StatusBadRequest
	case errors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.CodeForbidden:
		return http.StatusForbidden
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
