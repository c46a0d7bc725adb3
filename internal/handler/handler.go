package handler

import (
	"errors"

	"backend/internal/service"
)

// isValidationError maps known bad-input errors to a 400 instead of a 500.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrCommissionIdentity) ||
		errors.Is(err, service.ErrImportFilename) ||
		errors.Is(err, service.ErrImportNoRows)
}
