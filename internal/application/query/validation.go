package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateQuery checks struct tags and wraps failures as validation errors.
func validateQuery(op string, q any) error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return shared.WrapError("query", op, shared.ErrInvalidInput, "invalid query", err)
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return shared.WrapError("query", op, shared.ErrValidation, strings.Join(parts, "; "), err)
}

// FieldErrors maps field name to the failed validation tag. It returns nil
// when err carries no validator details.
func FieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
