package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
)

// decode reads the request body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSON(w, r, dst); err != nil {
		response.Error(w, appErrors.ValidationError("invalid request body").WithDetail(err.Error()))
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.ValidationErrors(w, verrs)
			return false
		}
		response.Error(w, appErrors.ValidationError("invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}
