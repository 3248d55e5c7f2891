package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "crmbridge/internal/errors"
)

// translateDBError maps gorm errors onto domain errors. what names the
// record, e.g. "contact 3".
func translateDBError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s conflicts with an existing record", apperrors.ErrUniquenessViolation, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s references a missing record", apperrors.ErrValidation, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
