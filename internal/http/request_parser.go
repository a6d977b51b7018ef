// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Decoding failures are reported as validation errors so they reach the
// client as 400 responses.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/core"
)

const maxBodyBytes = 1 << 20

// dateLayouts are tried in order; date-only values are read in the server's
// location.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// decodeJSON reads one JSON object from the request body into dst. An empty
// body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return core.Validationf("request body must not exceed %d bytes", maxErr.Limit)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return core.Validationf("request body is not valid JSON")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return core.Validationf("%s must be a %s", typeErr.Field, typeErr.Type)
	default:
		return core.Validationf("invalid request body: %v", err)
	}
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty value yields nil.
func parseDate(field, value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t, nil
		}
	}
	return nil, core.Validationf("%s must be a date (YYYY-MM-DD or RFC 3339)", field)
}

// parseOptionalDate is parseDate for a field that may be absent.
func parseOptionalDate(field string, value *string, loc *time.Location) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseDate(field, *value, loc)
}

// queryDate parses the named query parameter as a date.
func queryDate(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	return parseDate(name, r.URL.Query().Get(name), loc)
}

// queryBool reads a boolean query parameter, defaulting to false.
func queryBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, core.Validationf("%s must be true or false", name)
	}
	return b, nil
}

// queryLimit reads a non-negative limit; 0 means no limit.
func queryLimit(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, core.Validationf("limit must be a non-negative integer")
	}
	return n, nil
}

// requireString trims value and fails when it is empty.
func requireString(field, value string) (string, error) {
	value = sanitizeInput(value)
	if value == "" {
		return "", requiredErr(field)
	}
	return value, nil
}

func requiredErr(field string) error {
	return core.Validationf("%s is required", field)
}
