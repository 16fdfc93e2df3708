package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope shared by every JSON body the service returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

func Error(msg string) Response {
	return Response{
		Success: false,
		Message: msg,
	}
}

// ValidationError turns validator errors into a client-facing message.
// Only field names and rule names are exposed.
func ValidationError(errs validator.ValidationErrors) Response {
	var missing, invalid []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			missing = append(missing, err.Field())
		default:
			invalid = append(invalid, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	var msgs []string
	if len(missing) > 0 {
		msgs = append(msgs, "missing required fields: "+strings.Join(missing, ", "))
	}
	msgs = append(msgs, invalid...)

	return Error(strings.Join(msgs, "; "))
}
