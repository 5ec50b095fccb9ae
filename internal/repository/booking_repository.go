package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	"github.com/shareloop/service-sharing/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt   time.Time `gorm:"not null;index"`
	EndAt     time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("booking with ID %s not found", id))
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByBookerID retrieves a booker's bookings narrowed by state, newest start first.
func (r *GormBookingRepository) FindByBookerID(
	ctx context.Context,
	bookerID uuid.UUID,
	state bookingDomain.State,
	now time.Time,
	page domain.PageRequest,
) ([]*bookingDomain.Booking, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&BookingModel{}).Where("booker_id = ?", bookerID)
	}
	return r.listFiltered(base, state, now, page)
}

// FindByItemOwnerID retrieves bookings against a user's items narrowed by
// state, newest start first. Ownership is resolved through the items table.
func (r *GormBookingRepository) FindByItemOwnerID(
	ctx context.Context,
	ownerID uuid.UUID,
	state bookingDomain.State,
	now time.Time,
	page domain.PageRequest,
) ([]*bookingDomain.Booking, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&BookingModel{}).
			Joins("JOIN items ON items.id = bookings.item_id").
			Where("items.owner_id = ?", ownerID)
	}
	return r.listFiltered(base, state, now, page)
}

// listFiltered applies the state narrowing, counts, and fetches one page
// sorted descending by start (created_at breaks ties stably).
func (r *GormBookingRepository) listFiltered(
	base func() *gorm.DB,
	state bookingDomain.State,
	now time.Time,
	page domain.PageRequest,
) ([]*bookingDomain.Booking, int64, error) {
	narrow := func(q *gorm.DB) *gorm.DB {
		switch state {
		case bookingDomain.StateCurrent:
			return q.Where("start_at <= ? AND end_at >= ?", now, now)
		case bookingDomain.StatePast:
			return q.Where("end_at < ?", now)
		case bookingDomain.StateFuture:
			return q.Where("start_at > ?", now)
		case bookingDomain.StateWaiting:
			return q.Where("bookings.status = ?", string(bookingDomain.StatusWaiting))
		case bookingDomain.StateRejected:
			return q.Where("bookings.status = ?", string(bookingDomain.StatusRejected))
		default:
			return q
		}
	}

	var total int64
	if err := narrow(base()).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := narrow(base()).
		Order("start_at DESC, bookings.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, total, nil
}

// FindLastForItem returns the most recent booking of the item whose start
// precedes now, preferring the latest end among candidates.
func (r *GormBookingRepository) FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND start_at < ?", itemID, now).
		Order("start_at DESC, end_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last booking: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindNextForItem returns the earliest approved booking of the item whose
// start follows now.
func (r *GormBookingRepository) FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND start_at > ? AND status = ?", itemID, now, string(bookingDomain.StatusApproved)).
		Order("start_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find next booking: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindCompletedForBooker returns any approved booking of the item by the user
// that ended before now.
func (r *GormBookingRepository) FindCompletedForBooker(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND booker_id = ? AND end_at < ? AND status = ?",
			itemID, bookerID, now, string(bookingDomain.StatusApproved)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find completed booking: %w", err)
	}
	return toDomainBooking(&model), nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page domain.PageRequest) ([]*bookingDomain.Booking, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&BookingModel{})
	}
	return r.listFiltered(base, bookingDomain.StateAll, time.Time{}, page)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus persists a decision with a compare-and-swap on the prior
// status. Zero rows affected means the booking was already decided (or never
// existed) and surfaces as an invalid-state error.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to bookingDomain.Status, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewInvalidStateError("booking status is already decided")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartAt,
		m.EndAt,
		bookingDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
