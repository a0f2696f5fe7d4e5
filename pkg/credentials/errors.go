package credentials

import (
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("credentials: not found")
	ErrInvalidRef  = errors.New("credentials: invalid reference")
	ErrUnsupported = errors.New("credentials: unsupported operation")
	ErrEmptyValue  = errors.New("credentials: empty value")
)

// ValidateReference performs basic checks on a reference.
func ValidateReference(ref Reference) error {
	if !isValidEnvironment(ref.Environment) {
		return ErrInvalidRef
	}
	if strings.TrimSpace(ref.Name) == "" {
		return ErrInvalidRef
	}
	return nil
}

func isValidEnvironment(env string) bool {
	switch env {
	case "live", "test":
		return true
	default:
		return false
	}
}
