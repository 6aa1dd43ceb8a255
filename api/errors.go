package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Machine-readable reason codes carried on every error response so the UI
// can distinguish failure classes without parsing messages.
const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeDuplicate    = "duplicate"
	CodeInternal     = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: CodeValidation})
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg, Code: CodeUnauthorized})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg, Code: CodeNotFound})
}

func duplicate(c echo.Context, msg string) error {
	return c.JSON(http.StatusConflict, errorResponse{Error: msg, Code: CodeDuplicate})
}

func internal(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg, Code: CodeInternal})
}
