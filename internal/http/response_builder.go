// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every handler answers through it so status, headers and encoding stay
// consistent across the API.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// envelope wraps resources the way the web client expects, e.g.
// {"expense": {...}}.
type envelope map[string]any

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": msg} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(envelope{"message": msg})
}

// Write encodes the body before touching w, so an encoding failure can still
// be reported as a proper error response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	var payload []byte
	if b.body != nil {
		var err error
		payload, err = json.Marshal(b.body)
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		payload = append(payload, '\n')
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if payload != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(b.statusCode)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
	}
	return nil
}

// OK creates a 200 response carrying body.
func OK(body any) *JSONResponseBuilder {
	return NewJSONResponse().Body(body)
}

// Created creates a 201 response carrying body.
func Created(body any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Body(body)
}

// ErrorResponse creates a standard {"message"} error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "Method Not Allowed")
}
