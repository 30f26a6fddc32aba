package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/juniorISO69960/schema.autobot.tf/internal/query"
	"github.com/juniorISO69960/schema.autobot.tf/internal/refresh"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
	"github.com/juniorISO69960/schema.autobot.tf/internal/sku"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// missingBodyError reports an absent or blank request body.
type missingBodyError struct {
	what string
}

func (e *missingBodyError) Error() string {
	return "body of " + e.what + " is not defined"
}

// badRequest wraps a client input problem so writeError maps it to 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// failure writes {"success": false, "message": msg} plus any extra fields.
func failure(w http.ResponseWriter, status int, msg string, extra map[string]any) {
	body := map[string]any{"success": false, "message": msg}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError maps domain errors to status codes. notFound is the message
// used for query.ErrNotFound; when empty the error text is used.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, notFound string) {
	var rejected *refresh.RejectedError
	var fetchErr *refresh.FetchError

	switch {
	case errors.Is(err, schema.ErrNotReady):
		w.Header().Set("Retry-After", "5")
		failure(w, http.StatusServiceUnavailable, "Schema is not loaded yet", nil)
	case errors.As(err, new(*missingBodyError)),
		errors.Is(err, errBadRequest),
		errors.Is(err, sku.ErrMalformed),
		errors.Is(err, query.ErrInvalidKey),
		errors.Is(err, query.ErrInvalidClass):
		failure(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, query.ErrNotFound):
		if notFound == "" {
			notFound = err.Error()
		}
		failure(w, http.StatusNotFound, notFound, nil)
	case errors.As(err, &rejected):
		writeRejected(w, rejected)
	case errors.As(err, &fetchErr):
		failure(w, http.StatusInternalServerError, "Error while requesting schema", nil)
	default:
		logger.Error("unhandled error", "component", "api", "error", err)
		failure(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// writeRejected sends 429 with the wait in milliseconds in the body and in
// whole seconds (rounded up) in the Retry-After header.
func writeRejected(w http.ResponseWriter, rej *refresh.RejectedError) {
	secs := int64(math.Ceil(rej.RetryAfter.Seconds()))
	w.Header().Set("Retry-After", strconv.FormatInt(max(secs, 1), 10))

	msg := "This has already been called in the last 30 minutes"
	if rej.Reason == refresh.ReasonInProgress {
		msg = "A schema refresh is already in progress"
	}
	failure(w, http.StatusTooManyRequests, msg, map[string]any{
		"retry-after": rej.RetryAfter.Milliseconds(),
	})
}

func readBody(r *http.Request, what string) ([]byte, error) {
	if r.Body == nil {
		return nil, &missingBodyError{what: what}
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, badRequest("reading body: %v", err)
	}
	if len(data) > maxBodyBytes {
		return nil, badRequest("body exceeds %d bytes", maxBodyBytes)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &missingBodyError{what: what}
	}
	return data, nil
}

// readStringBody accepts either raw text or a JSON string literal.
func readStringBody(r *http.Request, what string) (string, error) {
	data, err := readBody(r, what)
	if err != nil {
		return "", err
	}
	if data[0] != '"' {
		return string(data), nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", badRequest("body of %s must be a string", what)
	}
	if strings.TrimSpace(s) == "" {
		return "", &missingBodyError{what: what}
	}
	return s, nil
}

// readDefindexBody accepts a JSON number (or the same digits as text).
func readDefindexBody(r *http.Request) (int, error) {
	data, err := readBody(r, "item defindex")
	if err != nil {
		return 0, err
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		n = json.Number(data)
	}
	v, err := strconv.Atoi(n.String())
	if err != nil || v < 0 {
		return 0, badRequest("body of item defindex must be a non-negative integer")
	}
	return v, nil
}

// boolFlag parses an optional boolean query parameter.
func boolFlag(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("querystring/%s must be boolean", name)
	}
	return b, nil
}
