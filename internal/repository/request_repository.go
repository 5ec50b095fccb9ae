package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	requestDomain "github.com/shareloop/service-sharing/internal/domain/request"
	"github.com/shareloop/service-sharing/pkg/domain"
)

// RequestModel is the GORM model for the item_requests table.
type RequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;index;not null"`
	Description string    `gorm:"not null;size:2000"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RequestModel) TableName() string {
	return "item_requests"
}

// GormRequestRepository is the GORM-based implementation of request.Repository.
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository.
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByID retrieves an item request by id.
func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	var model RequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("item request with ID %s not found", id))
		}
		return nil, fmt.Errorf("failed to find item request by ID: %w", err)
	}
	return toDomainRequest(&model), nil
}

// FindByRequesterID retrieves a user's own requests, newest first.
func (r *GormRequestRepository) FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item requests: %w", err)
	}
	return toDomainRequests(models), nil
}

// FindAllExcept retrieves other users' requests, newest first, paginated.
func (r *GormRequestRepository) FindAllExcept(ctx context.Context, requesterID uuid.UUID, page domain.PageRequest) ([]*requestDomain.ItemRequest, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RequestModel{}).
		Where("requester_id <> ?", requesterID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count item requests: %w", err)
	}

	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id <> ?", requesterID).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list item requests: %w", err)
	}
	return toDomainRequests(models), total, nil
}

// Save persists a new item request.
func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := &RequestModel{
		ID:          req.ID(),
		RequesterID: req.RequesterID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save item request: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toDomainRequest(m *RequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequesterID, m.Description, m.CreatedAt)
}

func toDomainRequests(models []RequestModel) []*requestDomain.ItemRequest {
	requests := make([]*requestDomain.ItemRequest, len(models))
	for i, m := range models {
		requests[i] = toDomainRequest(&m)
	}
	return requests
}
