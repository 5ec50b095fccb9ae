package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// Repository defines persistence operations for item requests.
type Repository interface {
	// FindByID retrieves a request or a not-found error.
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)

	// FindByRequesterID retrieves a user's own requests, newest first.
	FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)

	// FindAllExcept retrieves other users' requests, newest first, paginated.
	FindAllExcept(ctx context.Context, requesterID uuid.UUID, page domain.PageRequest) ([]*ItemRequest, int64, error)

	// Save persists a new request.
	Save(ctx context.Context, req *ItemRequest) error
}
