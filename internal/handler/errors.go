// Package handler provides HTTP handlers for the web tools API.
package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/service"
)

// toAPIError maps service errors onto the client-facing error set.
func toAPIError(err error) *apierrors.APIError {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return apierrors.ErrUnauthorized
	case errors.Is(err, service.ErrStoreUnavailable), errors.Is(err, service.ErrUpstreamUnavailable):
		return apierrors.ErrServiceUnavailable
	case errors.Is(err, service.ErrUnknownProvider):
		return apierrors.NewNotFoundError("Provider")
	case errors.Is(err, service.ErrEmailRequired):
		return apierrors.NewValidationError("email", "the provider did not return an email address")
	case errors.Is(err, service.ErrSubjectRequired):
		return apierrors.NewValidationError("id", "the provider did not return an account id")
	case errors.Is(err, service.ErrNotFound):
		return apierrors.ErrNotFound
	case errors.Is(err, service.ErrForbidden):
		return apierrors.ErrForbidden
	default:
		return apierrors.ErrInternal
	}
}

// validationError flattens validator errors into a field map.
func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.ErrBadRequest.WithMessage(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = field + " is required"
		case "url":
			fields[field] = field + " must be a valid URL"
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		default:
			fields[field] = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
		}
	}
	return apierrors.NewValidationErrors(fields)
}
