package comment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for comments.
type Repository interface {
	// FindByItemID retrieves an item's comments, oldest first.
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)

	// Save persists a new comment. Comments are never updated or deleted.
	Save(ctx context.Context, comment *Comment) error
}
