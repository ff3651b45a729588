package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/middleware"
	"github.com/rogerio-castellano/stock-ledger/internal/remote"
	"github.com/rs/zerolog"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// queryTime parses an RFC3339 query parameter. Query decoding turns the "+"
// of a positive offset into a space, so it is put back before parsing.
// Example: 2025-07-03T17:44:03+02:00 arrives as 2025-07-03T17:44:03 02:00
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if len(raw) == len(time.RFC3339) && raw[len(raw)-6] == ' ' {
		raw = raw[:len(raw)-6] + "+" + raw[len(raw)-5:]
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.FieldValidationError(name, "must be an RFC3339 timestamp").WithDetail(raw)
	}
	return &ts, nil
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.FieldValidationError(name, "must be an integer").WithDetail(raw)
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, appErrors.FieldValidationError(name, "must be true or false").WithDetail(raw)
	}
	return v, nil
}

func queryString(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// paging reads the offset and limit parameters shared by every listing.
func paging(r *http.Request) (offset, limit *int, err error) {
	if offset, err = queryInt(r, "offset"); err != nil {
		return nil, nil, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return nil, nil, err
	}
	if offset != nil && *offset < 0 {
		return nil, nil, appErrors.FieldValidationError("offset", "must be zero or positive")
	}
	if limit != nil && *limit <= 0 {
		return nil, nil, appErrors.FieldValidationError("limit", "must be greater than zero")
	}
	return offset, limit, nil
}

// remoteContext forwards the caller's remote catalog credential, if the
// access token carries one.
func remoteContext(r *http.Request) context.Context {
	ctx := r.Context()
	if claims, ok := middleware.ClaimsFromContext(ctx); ok && claims.RemoteToken != "" {
		ctx = remote.ContextWithToken(ctx, claims.RemoteToken)
	}
	return ctx
}

func logFrom(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
