package item

import (
	"context"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// Repository defines persistence operations for listed items.
type Repository interface {
	// FindByID retrieves an item or a not-found error.
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByOwnerID retrieves a user's items ordered by creation, paginated.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*Item, int64, error)

	// Search retrieves available items whose name or description contains
	// text (case-insensitive), paginated. Blank text returns an empty page.
	Search(ctx context.Context, text string, page domain.PageRequest) ([]*Item, int64, error)

	// FindByRequestID retrieves items answering an item request, oldest first.
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*Item, error)

	// Save persists a new item.
	Save(ctx context.Context, item *Item) error

	// Update persists changes to an existing item.
	Update(ctx context.Context, item *Item) error
}
