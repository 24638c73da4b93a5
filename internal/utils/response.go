package utils

import (
	"errors"
	"net/http"
	"time"

	"parkwatch/internal/models"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Total      int64           `json:"total,omitempty"`
	Count      int             `json:"count,omitempty"`
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now(),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, APIResponse{
		Status: StatusError,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeValidation, message)
}

func UnauthorizedResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required")
}

// domainErrorMapping maps the core error taxonomy to transport codes. The
// mapping lives here so the domain stays transport-agnostic.
var domainErrorMapping = []struct {
	target error
	status int
	code   string
}{
	{models.ErrValidation, http.StatusBadRequest, ErrCodeValidation},
	{models.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{models.ErrOutsideOperatingHours, http.StatusUnprocessableEntity, ErrCodeOutsideOperatingHours},
	{models.ErrSlotConflict, http.StatusConflict, ErrCodeSlotConflict},
	{models.ErrInvalidExtension, http.StatusUnprocessableEntity, ErrCodeInvalidExtension},
	{models.ErrTooEarly, http.StatusUnprocessableEntity, ErrCodeTooEarly},
	{models.ErrExpired, http.StatusGone, ErrCodeExpired},
	{models.ErrAlreadyCompleted, http.StatusConflict, ErrCodeAlreadyCompleted},
	{models.ErrInvalidState, http.StatusConflict, ErrCodeInvalidState},
	{models.ErrPartialUpdate, http.StatusMultiStatus, ErrCodePartialUpdate},
	{models.ErrVersionConflict, http.StatusConflict, ErrCodeVersionConflict},
}

// DomainErrorResponse translates a core error into the API envelope. Unknown
// errors become opaque 500s.
func DomainErrorResponse(c *gin.Context, err error) {
	for _, m := range domainErrorMapping {
		if errors.Is(err, m.target) {
			ErrorResponse(c, m.status, m.code, err.Error())
			return
		}
	}
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
