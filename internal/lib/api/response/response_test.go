package response

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,max=4"`
}

func validationErrors(t *testing.T, req registerRequest) validator.ValidationErrors {
	t.Helper()

	err := validator.New().Struct(req)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	return verrs
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		req  registerRequest
		want string
	}{
		{
			name: "missing",
			req:  registerRequest{Email: "a@x.com"},
			want: "missing required fields: Name, Password",
		},
		{
			name: "invalid",
			req:  registerRequest{Name: "A", Email: "nope", Password: "pw"},
			want: "field Email is not valid",
		},
		{
			name: "both",
			req:  registerRequest{Email: "nope", Password: "toolong"},
			want: "missing required fields: Name; field Email is not valid; field Password is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidationError(validationErrors(t, tt.req))
			assert.False(t, got.Success)
			assert.Equal(t, tt.want, got.Message)
		})
	}
}

func TestOKAndError(t *testing.T) {
	assert.Equal(t, Response{Success: true, Message: "done"}, OK("done"))
	assert.Equal(t, Response{Success: false, Message: "nope"}, Error("nope"))
}
