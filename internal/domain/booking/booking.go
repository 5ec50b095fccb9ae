package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// Booking is the aggregate root for the booking domain: a time-bounded
// reservation of an item by a booker, subject to owner approval.
type Booking struct {
	id       uuid.UUID
	itemID   uuid.UUID
	bookerID uuid.UUID
	start    time.Time
	end      time.Time
	status   Status

	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a booking in the waiting state. Temporal bounds are
// validated once here and never re-checked after creation.
func NewBooking(bookerID, itemID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, domain.NewValidationError("start and end times must be provided")
	}
	if !start.Before(end) {
		return nil, domain.NewValidationError("end time must be strictly after start time")
	}

	return &Booking{
		id:        uuid.New(),
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start.UTC(),
		end:       end.UTC(),
		status:    StatusWaiting,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, itemID, bookerID uuid.UUID,
	start, end time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// BookerID returns the requesting user's identifier.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the reservation start time.
func (b *Booking) Start() time.Time { return b.start }

// End returns the reservation end time.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current decision status.
func (b *Booking) Status() Status { return b.status }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsBookedBy reports whether the booking belongs to the given booker.
func (b *Booking) IsBookedBy(userID uuid.UUID) bool {
	return b.bookerID == userID
}

// Decide moves a waiting booking to approved or rejected. Both outcomes are
// terminal; deciding an already-decided booking fails.
func (b *Booking) Decide(approve bool, now time.Time) error {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError("booking status is already decided")
	}
	b.status = target
	b.updatedAt = now
	return nil
}
