package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/omerfarooq187/hostel-management/apperr"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New()} }

func (cv *Validator) Validate(i any) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return nil
}

// httpError maps apperr kinds onto HTTP statuses. Internal detail goes to
// the log, never to the client.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	msg := apperr.MessageOf(err)
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": msg})
	case apperr.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": msg})
	case apperr.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": msg})
	default:
		log.Error().Err(err).Msg("request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": msg})
	}
}

// uintParam parses a numeric path parameter.
func uintParam(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "invalid " + name})
	}
	return uint(n), nil
}

// uintQuery parses a required numeric query parameter.
func uintQuery(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.QueryParam(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "missing or invalid " + name})
	}
	return uint(n), nil
}

// floatQueryOr parses an optional float query parameter with a default.
func floatQueryOr(c echo.Context, name string, def float64) float64 {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// principalEmail is the authenticated identity attached by RequireAuth.
func principalEmail(c echo.Context) (string, error) {
	email, _ := c.Get("email").(string)
	if email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "MISSING_PRINCIPAL"})
	}
	return email, nil
}
