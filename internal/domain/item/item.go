package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// Item is an aggregate root for a listed item available for loan.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	description string
	available   bool
	requestID   *uuid.UUID

	createdAt time.Time
	updatedAt time.Time
}

// NewItem creates a new listed item, optionally answering an item request.
func NewItem(ownerID uuid.UUID, name, description string, available bool, requestID *uuid.UUID, now time.Time) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("item description is required")
	}

	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name, description string,
	available bool,
	requestID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID         { return i.id }
func (i *Item) OwnerID() uuid.UUID    { return i.ownerID }
func (i *Item) Name() string          { return i.name }
func (i *Item) Description() string   { return i.description }
func (i *Item) Available() bool       { return i.available }
func (i *Item) RequestID() *uuid.UUID { return i.requestID }
func (i *Item) CreatedAt() time.Time  { return i.createdAt }
func (i *Item) UpdatedAt() time.Time  { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy reports whether the item is listed by the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Update applies a partial update. Empty name/description leave the current
// value; availability is applied only when the pointer is set.
func (i *Item) Update(name, description string, available *bool, now time.Time) {
	if name != "" {
		i.name = name
	}
	if description != "" {
		i.description = description
	}
	if available != nil {
		i.available = *available
	}
	i.updatedAt = now
}
