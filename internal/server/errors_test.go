package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-assistant/internal/db"
	"github.com/jonathan/interview-assistant/internal/llm"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "mode", Message: "oneof"}, http.StatusBadRequest},
		{"question index", fmt.Errorf("save: %w", db.ErrInvalidQuestionIndex), http.StatusBadRequest},
		{"upload too large", &ErrUploadTooLarge{Limit: 16 << 20}, http.StatusRequestEntityTooLarge},
		{"session not found", db.ErrSessionNotFound, http.StatusNotFound},
		{"session completed", fmt.Errorf("complete: %w", db.ErrSessionCompleted), http.StatusConflict},
		{"generation overloaded", llm.NewGenerationError("m", "d", errors.New("503 unavailable")), http.StatusServiceUnavailable},
		{"generation not configured", llm.NewGenerationError("m", "d", llm.ErrNotConfigured), http.StatusServiceUnavailable},
		{"generation malformed", llm.NewGenerationError("m", "d", &llm.ParseError{Message: "bad"}), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: mode - oneof", (&ErrValidation{Field: "mode", Message: "oneof"}).Error())
	assert.Equal(t, "validation error: invalid request", (&ErrValidation{Message: "invalid request"}).Error())
	assert.Equal(t, "file exceeds the 16 MB upload limit", (&ErrUploadTooLarge{Limit: 16 << 20}).Error())
}

func TestValidationError(t *testing.T) {
	type request struct {
		Mode string `validate:"required,oneof=resume role"`
	}
	err := validator.New().Struct(request{Mode: "panel"})

	got := validationError(err)
	assert.Equal(t, "Mode", got.Field)
	assert.Equal(t, "oneof", got.Message)

	assert.Equal(t, "invalid request", validationError(errors.New("other")).Message)
}
