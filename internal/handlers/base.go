// Package handlers wires the HTTP surface: request parsing, the response
// envelope, and the route handlers themselves.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Envelope is the success half of the response envelope. Failures are
// shaped by the error handler middleware.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
}

// OK returns a 200 with the data wrapped in the envelope.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Code: http.StatusOK, Data: data})
}

// OKMessage returns a 200 with a message and no data.
func OKMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Code: http.StatusOK, Message: message})
}

// Created returns a 201 with the data wrapped in the envelope.
func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Code: http.StatusCreated, Data: data})
}

// ParsePagination reads limit and offset query parameters, clamping limit
// to a sane page size. A missing limit defaults to 50.
func ParsePagination(c echo.Context) (limit, offset int) {
	limit = 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// ParseID parses a UUID path parameter and returns it in string form.
func ParseID(c echo.Context, param string) (string, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	if _, err := uuid.Parse(idStr); err != nil {
		return "", httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}

	return idStr, nil
}
