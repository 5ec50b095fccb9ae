package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/internal/events"
	"github.com/shareloop/service-sharing/pkg/clock"
	"github.com/shareloop/service-sharing/pkg/domain"
	"github.com/shareloop/service-sharing/pkg/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// BookingItemDTO is the reduced item projection inside a booking view.
type BookingItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
}

// BookingUserDTO is the reduced user projection inside a booking view.
type BookingUserDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID      `json:"id"`
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	Status string         `json:"status"`
	Item   BookingItemDTO `json:"item"`
	Booker BookingUserDTO `json:"booker"`
}

// BookingStubDTO is the compact projection attached to item views as the
// last/next booking.
type BookingStubDTO struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Status   string    `json:"status"`
}

// EventPublisher publishes keyed cloud events to a topic. Satisfied by
// kafka.Producer.
type EventPublisher interface {
	PublishKeyed(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating the booking
// lifecycle: creation, owner decisions, and state-filtered listings.
type BookingService struct {
	bookings bookingDomain.Repository
	items    itemDomain.Repository
	users    userDomain.Repository
	producer EventPublisher
	clock    clock.Clock
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	items itemDomain.Repository,
	users userDomain.Repository,
	producer EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		producer: producer,
		clock:    clk,
		logger:   logger,
	}
}

// Create validates and persists a new booking in the waiting state.
//
// Checks run in a fixed order and the first failure wins: the booker must
// exist, the item must exist, the booker must not be the item's owner, both
// temporal bounds must be present with start strictly before end, and the
// item must currently be available.
func (s *BookingService) Create(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	// Hidden as not-found rather than forbidden so owners can't probe
	// their own items through this path any differently than strangers.
	if it.IsOwnedBy(bookerID) {
		return nil, domain.NewNotFoundError("item cannot be booked by its own owner")
	}

	bk, err := bookingDomain.NewBooking(bookerID, req.ItemID, req.Start, req.End, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if !it.Available() {
		return nil, domain.NewValidationError(fmt.Sprintf("item %s is not currently available for booking", it.ID()))
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("booker_id", bookerID.String()),
	)

	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ItemID:     it.ID(),
		OwnerID:    it.OwnerID(),
		BookerID:   bookerID,
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: s.clock.Now(),
	}
	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), evt)

	result := toBookingDTO(bk, it, booker)
	return &result, nil
}

// Decide applies the item owner's approval or rejection to a waiting
// booking. Both outcomes are terminal. The status write is a compare-and-swap
// in the store, so of two concurrent decisions exactly one wins and the
// other observes an invalid-state error.
func (s *BookingService) Decide(ctx context.Context, userID uuid.UUID, approve bool, bookingID uuid.UUID) (*BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if !it.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("only the item owner may approve or reject a booking")
	}

	prior := bk.Status()
	if err := bk.Decide(approve, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatus(ctx, bk.ID(), prior, bk.Status(), bk.UpdatedAt()); err != nil {
		return nil, err
	}

	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
	)

	eventType := events.BookingRejected
	if approve {
		eventType = events.BookingApproved
	}
	evt := events.BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     it.ID(),
		OwnerID:    it.OwnerID(),
		BookerID:   bk.BookerID(),
		Status:     bk.Status().String(),
		OccurredAt: s.clock.Now(),
	}
	s.publishEvent(ctx, eventType, bk.ID().String(), evt)

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, it, booker)
	return &result, nil
}

// GetByID returns a booking, visible only to its booker or the item's owner.
// Anyone else gets a not-found error, indistinguishable from a missing row.
func (s *BookingService) GetByID(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if !bk.IsBookedBy(userID) && !it.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError("booking may only be viewed by its booker or the item owner")
	}

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, it, booker)
	return &result, nil
}

// ListForBooker returns the user's own bookings narrowed by the textual
// state filter, newest start first.
func (s *BookingService) ListForBooker(ctx context.Context, userID uuid.UUID, stateStr string, from, size int) ([]BookingDTO, error) {
	state, page, err := s.parseListing(stateStr, from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	bookings, _, err := s.bookings.FindByBookerID(ctx, userID, state, s.clock.Now(), page)
	if err != nil {
		return nil, err
	}
	return s.assembleBookingDTOs(ctx, bookings)
}

// ListForOwner returns bookings against the user's items narrowed by the
// textual state filter, newest start first.
func (s *BookingService) ListForOwner(ctx context.Context, userID uuid.UUID, stateStr string, from, size int) ([]BookingDTO, error) {
	state, page, err := s.parseListing(stateStr, from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	bookings, _, err := s.bookings.FindByItemOwnerID(ctx, userID, state, s.clock.Now(), page)
	if err != nil {
		return nil, err
	}
	return s.assembleBookingDTOs(ctx, bookings)
}

func (s *BookingService) parseListing(stateStr string, from, size int) (bookingDomain.State, domain.PageRequest, error) {
	state, err := bookingDomain.ParseState(stateStr)
	if err != nil {
		return "", domain.PageRequest{}, err
	}
	if from < 0 {
		return "", domain.PageRequest{}, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return "", domain.PageRequest{}, domain.NewValidationError("size must be positive")
	}
	return state, domain.NewPageRequest(from, size), nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAll returns a paginated list of all bookings (admin).
func (s *BookingService) ListAll(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, domain.PageRequest{Page: page, Size: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	dtos, err := s.assembleBookingDTOs(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// Stats returns aggregate booking statistics (admin).
func (s *BookingService) Stats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

// assembleBookingDTOs resolves item and booker snapshots for each booking,
// memoizing lookups within the request.
func (s *BookingService) assembleBookingDTOs(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	itemCache := make(map[uuid.UUID]*itemDomain.Item)
	userCache := make(map[uuid.UUID]*userDomain.User)

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		it, ok := itemCache[bk.ItemID()]
		if !ok {
			var err error
			it, err = s.items.FindByID(ctx, bk.ItemID())
			if err != nil {
				return nil, err
			}
			itemCache[bk.ItemID()] = it
		}

		booker, ok := userCache[bk.BookerID()]
		if !ok {
			var err error
			booker, err = s.users.FindByID(ctx, bk.BookerID())
			if err != nil {
				return nil, err
			}
			userCache[bk.BookerID()] = booker
		}

		dtos[i] = toBookingDTO(bk, it, booker)
	}
	return dtos, nil
}

func toBookingDTO(bk *bookingDomain.Booking, it *itemDomain.Item, booker *userDomain.User) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: bk.Status().String(),
		Item: BookingItemDTO{
			ID:          it.ID(),
			Name:        it.Name(),
			Description: it.Description(),
			Available:   it.Available(),
		},
		Booker: BookingUserDTO{
			ID:    booker.ID(),
			Name:  booker.Name(),
			Email: booker.Email(),
		},
	}
}

func toBookingStubDTO(bk *bookingDomain.Booking) *BookingStubDTO {
	if bk == nil {
		return nil
	}
	return &BookingStubDTO{
		ID:       bk.ID(),
		BookerID: bk.BookerID(),
		Start:    bk.Start(),
		End:      bk.End(),
		Status:   bk.Status().String(),
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-sharing", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishKeyed(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
