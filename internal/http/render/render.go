// Package render writes JSON responses and maps domain errors to HTTP
// statuses.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as {"error": message}. Server-side faults are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	JSON(w, status, errorResponse{Error: apperr.Message(err)})
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	if apperr.IsValidation(err) {
		return http.StatusBadRequest
	}

	if errors.Is(err, apperr.ErrNotFound) {
		return http.StatusNotFound
	}

	if kind, ok := apperr.AuthKindOf(err); ok {
		switch kind {
		case apperr.AuthEmailInUse:
			return http.StatusConflict
		case apperr.AuthInvalidInput:
			return http.StatusBadRequest
		case apperr.AuthUnavailable:
			return http.StatusServiceUnavailable
		}

		return http.StatusUnauthorized
	}

	if kind, ok := apperr.RemoteKindOf(err); ok {
		switch kind {
		case apperr.RemoteUnauthorized:
			return http.StatusUnauthorized
		case apperr.RemoteServiceUnavailable:
			return http.StatusServiceUnavailable
		case apperr.RemoteMalformedResponse:
			return http.StatusBadGateway
		}
	}

	return http.StatusInternalServerError
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	}

	return fmt.Sprintf("failed the %q rule", fe.Tag())
}

// Decode reads a JSON body into v and checks its validate tags. Failures are
// validation errors.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("body", err.Error())
	}

	if err := validate.Struct(v); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return apperr.Validation(fields[0].Field(), reason(fields[0]))
		}

		// v is not a struct; nothing to check.
	}

	return nil
}

// Month reads the {year} and {month} URL parameters.
func Month(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		return 0, 0, apperr.Validation("year", fmt.Sprintf("%q is not a year", chi.URLParam(r, "year")))
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, apperr.Validation("month", fmt.Sprintf("%q is not between 1 and 12", chi.URLParam(r, "month")))
	}

	return year, time.Month(month), nil
}
