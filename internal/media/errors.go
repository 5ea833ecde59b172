package media

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("asset not found")
	ErrForbidden            = errors.New("access denied")
	ErrMissingFile          = errors.New("no file uploaded")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("uploaded file is too large")
)

// ValidationError rejects a single malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ForbiddenError names the asset that made an entire bulk operation fail
// the authorization gate. It matches errors.Is(err, ErrForbidden).
type ForbiddenError struct {
	AssetID int64
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access denied for asset ID %d", e.AssetID)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
