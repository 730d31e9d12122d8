package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("category not found")
	ErrNameConflict = errors.New("category name already in use")
	ErrInvalid      = errors.New("invalid category")
)

// Category is a user-defined keyword rule. Deactivated categories are kept
// but no longer take part in categorization.
type Category struct {
	ID          uuid.UUID
	Name        string
	Keywords    []string
	Description string
	Active      bool
	CreatedAt   time.Time
	ModifiedAt  *time.Time
}

type CreateParams struct {
	Name        string
	Keywords    []string
	Description string
}

// UpdateParams changes only the fields that are set.
type UpdateParams struct {
	Name        *string
	Keywords    []string
	Description *string
}
