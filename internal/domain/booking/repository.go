package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// Repository defines the persistence contract for booking aggregates.
//
// Listing methods return an empty slice, not an error, when nothing matches,
// and always sort descending by start. Projection lookups (last/next/
// completed) return (nil, nil) when no candidate exists; FindByID signals a
// missing row with a not-found error.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByBookerID retrieves bookings requested by a user, narrowed by the
	// state filter evaluated against now, with pagination.
	FindByBookerID(ctx context.Context, bookerID uuid.UUID, state State, now time.Time, page domain.PageRequest) ([]*Booking, int64, error)

	// FindByItemOwnerID retrieves bookings against items owned by a user,
	// narrowed by the state filter evaluated against now, with pagination.
	FindByItemOwnerID(ctx context.Context, ownerID uuid.UUID, state State, now time.Time, page domain.PageRequest) ([]*Booking, int64, error)

	// FindLastForItem returns the item's most recent booking whose start
	// precedes now; ties broken by the latest end.
	FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindNextForItem returns the item's earliest approved booking whose
	// start follows now; ties broken by the earliest start.
	FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindCompletedForBooker returns any approved booking of the item by the
	// user that ended before now, or (nil, nil) when none qualifies.
	FindCompletedForBooker(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page domain.PageRequest) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a decision with a compare-and-swap on the prior
	// status: when the stored status no longer equals from, no row is
	// touched and an invalid-state error is returned, so exactly one of two
	// concurrent decisions wins.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, updatedAt time.Time) error
}
