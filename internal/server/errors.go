package server

import (
	"errors"
	"net/http"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
	"github.com/abhaystar2004/dynamic-form/pkg/store"
)

var (
	// ErrBadCSRF rejects form posts without the session token.
	ErrBadCSRF = errors.New("server: invalid or missing csrf token")
	// ErrBadIndex rejects entry routes whose index is not a number.
	ErrBadIndex = errors.New("server: invalid entry index")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadCSRF):
		return http.StatusForbidden
	case errors.Is(err, schema.ErrUnknownFormType),
		errors.Is(err, store.ErrIndexOutOfRange),
		errors.Is(err, ErrBadIndex):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, controller.ErrUnknownField),
		errors.Is(err, controller.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, controller.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
