package request

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// ItemRequest is a wishlist-style request for an item nobody has listed yet.
// It shares no state with bookings; items may later reference a request they
// answer.
type ItemRequest struct {
	id          uuid.UUID
	requesterID uuid.UUID
	description string
	createdAt   time.Time
}

// NewItemRequest creates an item request with a required description.
func NewItemRequest(requesterID uuid.UUID, description string, now time.Time) (*ItemRequest, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("request description is required")
	}
	return &ItemRequest{
		id:          uuid.New(),
		requesterID: requesterID,
		description: description,
		createdAt:   now,
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence data.
func Reconstruct(id, requesterID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{
		id:          id,
		requesterID: requesterID,
		description: description,
		createdAt:   createdAt,
	}
}

func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequesterID() uuid.UUID { return r.requesterID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }
