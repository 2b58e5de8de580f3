// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

// RenderError writes the uniform error envelope for err and returns the
// status code it chose.
//
// # Description
//
// Classification order:
//  1. An apierrors.Error anywhere in the chain renders its kind, message and
//     details at its mapped status code.
//  2. validator.ValidationErrors (failed request binding) renders a 422 with
//     one detail entry per failed field.
//  3. Anything else renders a generic 500. The concrete error text is never
//     echoed to the client; callers log it server-side.
//
// The envelope always carries the request's correlation ID when one is set.
func RenderError(c *gin.Context, err error) int {
	resp := datatypes.ErrorResponse{
		Timestamp:     time.Now().UTC(),
		CorrelationID: CorrelationID(c.Request.Context()),
	}

	var status int
	var apiErr *apierrors.Error
	var vErrs validator.ValidationErrors

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode()
		resp.Error = string(apiErr.Kind)
		resp.Message = apiErr.Message
		resp.Details = apiErr.Details
	case errors.As(err, &vErrs):
		status = http.StatusUnprocessableEntity
		resp.Error = string(apierrors.KindInvalidRequest)
		resp.Message = "Request validation failed"
		details := make(map[string]any, len(vErrs))
		for _, fe := range vErrs {
			details[fe.Field()] = "failed '" + fe.Tag() + "' validation"
		}
		resp.Details = details
	default:
		status = http.StatusInternalServerError
		resp.Error = "InternalError"
		resp.Message = "An internal error occurred"
	}

	c.JSON(status, resp)
	return status
}

// AbortWithError renders err via RenderError and aborts the handler chain.
// Middleware uses this; handlers that are the last link can call RenderError
// directly.
func AbortWithError(c *gin.Context, err error) {
	RenderError(c, err)
	c.Abort()
}
