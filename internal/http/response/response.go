package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
)

type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// WriteJSON writes data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}
	return nil
}

// Error maps err onto its status code. Errors that are not AppErrors become
// opaque 500s.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := ErrorBody{
		Code:    appErrors.ErrCodeInternal,
		Message: "an unexpected error occurred",
	}

	if appErr, ok := appErrors.IsAppError(err); ok {
		status = appErr.StatusCode
		body.Code = appErr.Code
		body.Message = appErr.Message
		if appErr.Detail != "" {
			body.Details = []string{appErr.Detail}
		}
	}

	_ = WriteJSON(w, status, ErrorResponse{Error: body})
}

// ValidationErrors writes one message per failed field.
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, FieldMessage(err))
	}
	_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
		Code:    appErrors.ErrCodeValidation,
		Message: "validation failed",
		Details: msgs,
	}})
}

func FieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid: %s=%s", err.Field(), err.Tag(), err.Param())
	}
}
