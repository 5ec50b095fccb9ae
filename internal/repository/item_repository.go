package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	"github.com/shareloop/service-sharing/pkg/domain"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	Name        string     `gorm:"not null;size:255"`
	Description string     `gorm:"not null;size:2000"`
	Available   bool       `gorm:"not null"`
	RequestID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string {
	return "items"
}

// GormItemRepository is the GORM-based implementation of item.Repository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID retrieves an item by its unique identifier.
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("item with ID %s not found", id))
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return toDomainItem(&model), nil
}

// FindByOwnerID retrieves a user's items ordered by creation, paginated.
func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*itemDomain.Item, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ItemModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner items: %w", err)
	}

	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner items: %w", err)
	}
	return toDomainItems(models), total, nil
}

// Search retrieves available items matching text in name or description,
// case-insensitive. Blank text yields an empty page, not an error.
func (r *GormItemRepository) Search(ctx context.Context, text string, page domain.PageRequest) ([]*itemDomain.Item, int64, error) {
	if text == "" {
		return []*itemDomain.Item{}, 0, nil
	}
	pattern := "%" + text + "%"
	q := r.db.WithContext(ctx).Model(&ItemModel{}).
		Where("available = true").
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	var models []ItemModel
	if err := q.
		Order("created_at ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search items: %w", err)
	}
	return toDomainItems(models), total, nil
}

// FindByRequestID retrieves items answering an item request, oldest first.
func (r *GormItemRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*itemDomain.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items by request: %w", err)
	}
	items := toDomainItems(models)
	return items, nil
}

// Save persists a new item.
func (r *GormItemRepository) Save(ctx context.Context, it *itemDomain.Item) error {
	if err := r.db.WithContext(ctx).Create(toItemModel(it)).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// Update persists changes to an existing item.
func (r *GormItemRepository) Update(ctx context.Context, it *itemDomain.Item) error {
	model := toItemModel(it)
	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"description": model.Description,
			"available":   model.Available,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("item with ID %s not found", model.ID))
	}
	return nil
}

// --- Conversion Helpers ---

func toItemModel(it *itemDomain.Item) *ItemModel {
	return &ItemModel{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func toDomainItem(m *ItemModel) *itemDomain.Item {
	return itemDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		m.Description,
		m.Available,
		m.RequestID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainItems(models []ItemModel) []*itemDomain.Item {
	items := make([]*itemDomain.Item, len(models))
	for i, m := range models {
		items[i] = toDomainItem(&m)
	}
	return items
}
