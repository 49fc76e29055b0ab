package service

import (
	"errors"

	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/timeslot"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

// translateError maps pure-layer and repository failures onto DomainError.
// Anything not recognised is an infrastructure failure the caller may retry.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var formatErr *timeslot.FormatError
	if errors.As(err, &formatErr) {
		return apperrors.NewValidationError(formatErr.Error(), map[string]any{"value": formatErr.Input})
	}
	var rangeErr *timeslot.RangeError
	if errors.As(err, &rangeErr) {
		return apperrors.NewInternalError(rangeErr)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("resource", nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("staff unavailable at this time", nil)
	}
	return apperrors.NewUnavailable(err)
}

// lookupError maps a repository lookup failure for resource.
func lookupError(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return translateError(err)
}
