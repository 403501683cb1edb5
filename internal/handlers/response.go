package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/example/posture-check/internal/posture"
	"github.com/example/posture-check/internal/usecase"
)

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Error   string        `json:"error"`
	View    string        `json:"view,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail describes one failed field.
type ErrorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

func badRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Field(),
				Info: validationMessage(fieldErr),
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: details})
		return
	}
	abortWithError(c, http.StatusBadRequest, err.Error())
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "email":
		return fieldErr.Field() + " must be a valid email address"
	case "oneof":
		return fieldErr.Field() + " must be one of: " + fieldErr.Param()
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}

// respondWithError maps use case failures to HTTP statuses.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	resp := ErrorResponse{Error: err.Error()}
	var viewErr *posture.ViewError
	if errors.As(err, &viewErr) {
		resp.View = string(viewErr.View)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, posture.ErrImageDecode):
		status = http.StatusBadRequest
	case errors.Is(err, posture.ErrLandmarksMissing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, posture.ErrInvalidUserReference):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrScreeningNotFound):
		status = http.StatusNotFound
	default:
		resp = ErrorResponse{Error: "internal error"}
	}
	c.AbortWithStatusJSON(status, resp)
}
