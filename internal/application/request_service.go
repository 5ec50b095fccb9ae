package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	requestDomain "github.com/shareloop/service-sharing/internal/domain/request"
	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/pkg/clock"
	"github.com/shareloop/service-sharing/pkg/domain"
)

// CreateItemRequestRequest holds the description of a wanted item.
type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// RequestItemDTO is the compact item projection attached to request views.
type RequestItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// ItemRequestDTO is the response representation of an item request together
// with the items offered in answer to it.
type ItemRequestDTO struct {
	ID          uuid.UUID        `json:"id"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []RequestItemDTO `json:"items"`
}

// RequestService manages item requests: wanted-item postings that other
// users answer by listing matching items.
type RequestService struct {
	requests requestDomain.Repository
	items    itemDomain.Repository
	users    userDomain.Repository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests requestDomain.Repository,
	items itemDomain.Repository,
	users userDomain.Repository,
	clk clock.Clock,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		clock:    clk,
		logger:   logger,
	}
}

// Create posts a new item request for the given user.
func (s *RequestService) Create(ctx context.Context, requesterID uuid.UUID, req CreateItemRequestRequest) (*ItemRequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}

	ir, err := requestDomain.NewItemRequest(requesterID, req.Description, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, ir); err != nil {
		return nil, fmt.Errorf("failed to save item request: %w", err)
	}

	s.logger.Info("item request created",
		zap.String("request_id", ir.ID().String()),
		zap.String("requester_id", requesterID.String()),
	)

	result := ItemRequestDTO{
		ID:          ir.ID(),
		Description: ir.Description(),
		CreatedAt:   ir.CreatedAt(),
		Items:       []RequestItemDTO{},
	}
	return &result, nil
}

// ListOwn returns the user's own requests, newest first, each with its
// answering items.
func (s *RequestService) ListOwn(ctx context.Context, requesterID uuid.UUID) ([]ItemRequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.requests.FindByRequesterID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.assembleDTOs(ctx, requests)
}

// ListOthers returns other users' requests, newest first, paginated.
func (s *RequestService) ListOthers(ctx context.Context, userID uuid.UUID, from, size int) ([]ItemRequestDTO, error) {
	if from < 0 {
		return nil, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return nil, domain.NewValidationError("size must be positive")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, _, err := s.requests.FindAllExcept(ctx, userID, domain.NewPageRequest(from, size))
	if err != nil {
		return nil, err
	}
	return s.assembleDTOs(ctx, requests)
}

// GetByID returns a single request with its answering items. Any existing
// user may view any request.
func (s *RequestService) GetByID(ctx context.Context, userID, requestID uuid.UUID) (*ItemRequestDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	ir, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	dto, err := s.toDTO(ctx, ir)
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *RequestService) assembleDTOs(ctx context.Context, requests []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	dtos := make([]ItemRequestDTO, 0, len(requests))
	for _, ir := range requests {
		dto, err := s.toDTO(ctx, ir)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *RequestService) toDTO(ctx context.Context, ir *requestDomain.ItemRequest) (*ItemRequestDTO, error) {
	items, err := s.items.FindByRequestID(ctx, ir.ID())
	if err != nil {
		return nil, err
	}

	itemDTOs := make([]RequestItemDTO, 0, len(items))
	for _, it := range items {
		itemDTOs = append(itemDTOs, RequestItemDTO{
			ID:          it.ID(),
			Name:        it.Name(),
			Description: it.Description(),
			Available:   it.Available(),
			OwnerID:     it.OwnerID(),
			RequestID:   it.RequestID(),
		})
	}

	return &ItemRequestDTO{
		ID:          ir.ID(),
		Description: ir.Description(),
		CreatedAt:   ir.CreatedAt(),
		Items:       itemDTOs,
	}, nil
}
