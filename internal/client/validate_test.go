package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInput(t *testing.T) {
	type input struct {
		Title    string `json:"title" validate:"required"`
		Email    string `json:"email" validate:"omitempty,email"`
		Progress int    `json:"progress" validate:"min=0,max=100"`
		Status   string `json:"status" validate:"omitempty,oneof=pending inprogress completed"`
	}

	tests := []struct {
		name string
		in   input
		want string
	}{
		{"valid", input{Title: "x", Progress: 50}, ""},
		{"missing title", input{}, "title is required"},
		{"bad email", input{Title: "x", Email: "nope"}, "email must be a valid email address"},
		{"progress high", input{Title: "x", Progress: 101}, "progress must be at most 100"},
		{"bad status", input{Title: "x", Status: "done"}, "status must be one of: pending inprogress completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.in)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, tt.want, Message(err))
		})
	}
}
