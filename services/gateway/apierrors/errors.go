// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package apierrors defines the gateway's tagged error taxonomy.
//
// Errors created here carry a Kind, a human-readable message, and a
// structured details map. The HTTP layer inspects the Kind with errors.As to
// pick a status code; only errors of this type ever expose their message to
// clients. Anything else is rendered as a generic 500.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error with its taxonomy variant. The string value is the
// wire-visible error name in the response envelope.
type Kind string

const (
	KindAuthentication     Kind = "AuthenticationError"
	KindRateLimitExceeded  Kind = "RateLimitExceededError"
	KindInvalidRequest     Kind = "InvalidRequestError"
	KindServiceUnavailable Kind = "ServiceUnavailableError"
	KindDocumentProcessing Kind = "DocumentProcessingError"
	KindModelNotFound      Kind = "ModelNotFoundError"
	KindEmbedding          Kind = "EmbeddingError"
	KindQuery              Kind = "QueryError"
	KindConfiguration      Kind = "ConfigurationError"
)

// Error is the taxonomy error type.
//
// Created at the point of failure and propagated unchanged to the HTTP
// boundary. The gateway never retries these automatically; retry policy
// belongs to the caller.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

// New creates a taxonomy error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a taxonomy error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a taxonomy error that records cause for errors.Is/As chains.
// The cause's text is preserved in the details map under "cause" so it
// reaches the client only through a registered taxonomy error.
func Wrap(kind Kind, message string, cause error) *Error {
	e := &Error{Kind: kind, Message: message, cause: cause}
	if cause != nil {
		e.Details = map[string]any{"cause": cause.Error()}
	}
	return e
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode maps a Kind onto its HTTP status.
//
// Every kind not listed explicitly maps to 500; the table is closed by
// construction, so unregistered error types never pick up a non-500 code.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As extracts a taxonomy error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given taxonomy kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
