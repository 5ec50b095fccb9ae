package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	commentDomain "github.com/shareloop/service-sharing/internal/domain/comment"
	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/pkg/clock"
	"github.com/shareloop/service-sharing/pkg/domain"
)

// CreateItemRequest holds the data needed to register a new item.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest holds a partial item update. Nil fields are untouched.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// CreateCommentRequest holds the text of a new comment.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemDTO is the response representation of an item. LastBooking and
// NextBooking are populated only for the owner's view.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Available   bool            `json:"available"`
	RequestID   *uuid.UUID      `json:"request_id,omitempty"`
	LastBooking *BookingStubDTO `json:"last_booking,omitempty"`
	NextBooking *BookingStubDTO `json:"next_booking,omitempty"`
	Comments    []CommentDTO    `json:"comments"`
}

// ItemService manages the item catalog: registration, partial updates,
// owner listings with booking projections, availability search, and
// renter comments.
type ItemService struct {
	items    itemDomain.Repository
	bookings bookingDomain.Repository
	comments commentDomain.Repository
	users    userDomain.Repository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.Repository,
	bookings bookingDomain.Repository,
	comments commentDomain.Repository,
	users userDomain.Repository,
	clk clock.Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		bookings: bookings,
		comments: comments,
		users:    users,
		clock:    clk,
		logger:   logger,
	}
}

// Create registers a new item owned by the given user.
func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.Available == nil {
		return nil, domain.NewValidationError("available must be provided")
	}

	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, *req.Available, req.RequestID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", it.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)

	result := s.toItemDTO(it, nil, nil, []CommentDTO{})
	return &result, nil
}

// Update applies a partial update to an item. Only the owner may update;
// anyone else sees the item as missing.
func (s *ItemService) Update(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("item with ID %s not found for user %s", itemID, userID))
	}

	name := it.Name()
	if req.Name != nil {
		name = *req.Name
	}
	description := it.Description()
	if req.Description != nil {
		description = *req.Description
	}
	it.Update(name, description, req.Available, s.clock.Now())

	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item updated", zap.String("item_id", itemID.String()))

	return s.projectedDTO(ctx, it, userID)
}

// GetByID returns an item with its comments. Booking projections are
// attached only when the requesting user owns the item.
func (s *ItemService) GetByID(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.projectedDTO(ctx, it, userID)
}

// ListByOwner returns the user's items with last/next booking projections
// and comments.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID uuid.UUID, from, size int) ([]ItemDTO, error) {
	if from < 0 {
		return nil, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return nil, domain.NewValidationError("size must be positive")
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, _, err := s.items.FindByOwnerID(ctx, ownerID, domain.NewPageRequest(from, size))
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dto, err := s.projectedDTO(ctx, it, ownerID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

// Search finds available items whose name or description contains the text,
// case-insensitively. A blank query yields an empty result.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]ItemDTO, error) {
	if from < 0 {
		return nil, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return nil, domain.NewValidationError("size must be positive")
	}

	items, _, err := s.items.Search(ctx, text, domain.NewPageRequest(from, size))
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, s.toItemDTO(it, nil, nil, []CommentDTO{}))
	}
	return dtos, nil
}

// CreateComment adds a renter's comment to an item. Only a user with at
// least one approved booking of the item that has already ended may comment.
func (s *ItemService) CreateComment(ctx context.Context, authorID, itemID uuid.UUID, req CreateCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	completed, err := s.bookings.FindCompletedForBooker(ctx, it.ID(), authorID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if completed == nil {
		return nil, domain.NewValidationError("only users who have completed a booking of this item may comment on it")
	}

	cm, err := commentDomain.NewComment(it.ID(), authorID, author.Name(), req.Text, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.comments.Save(ctx, cm); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.logger.Info("comment created",
		zap.String("comment_id", cm.ID().String()),
		zap.String("item_id", itemID.String()),
	)

	dto := toCommentDTO(cm)
	return &dto, nil
}

// projectedDTO assembles the item view for a given requester: comments
// always, last/next booking only for the owner.
func (s *ItemService) projectedDTO(ctx context.Context, it *itemDomain.Item, userID uuid.UUID) (*ItemDTO, error) {
	comments, err := s.comments.FindByItemID(ctx, it.ID())
	if err != nil {
		return nil, err
	}
	commentDTOs := make([]CommentDTO, 0, len(comments))
	for _, cm := range comments {
		commentDTOs = append(commentDTOs, toCommentDTO(cm))
	}

	var last, next *BookingStubDTO
	if it.IsOwnedBy(userID) {
		now := s.clock.Now()
		lastBk, err := s.bookings.FindLastForItem(ctx, it.ID(), now)
		if err != nil {
			return nil, err
		}
		nextBk, err := s.bookings.FindNextForItem(ctx, it.ID(), now)
		if err != nil {
			return nil, err
		}
		last = toBookingStubDTO(lastBk)
		next = toBookingStubDTO(nextBk)
	}

	dto := s.toItemDTO(it, last, next, commentDTOs)
	return &dto, nil
}

func (s *ItemService) toItemDTO(it *itemDomain.Item, last, next *BookingStubDTO, comments []CommentDTO) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		LastBooking: last,
		NextBooking: next,
		Comments:    comments,
	}
}

func toCommentDTO(cm *commentDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:         cm.ID(),
		Text:       cm.Text(),
		AuthorName: cm.AuthorName(),
		CreatedAt:  cm.CreatedAt(),
	}
}
