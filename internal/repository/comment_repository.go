package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	commentDomain "github.com/shareloop/service-sharing/internal/domain/comment"
)

// CommentModel is the GORM model for the comments table. The author name is
// denormalized at write time so item views don't join the users table.
type CommentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID     uuid.UUID `gorm:"type:uuid;index;not null"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null"`
	AuthorName string    `gorm:"not null;size:255"`
	Text       string    `gorm:"not null;size:2000"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CommentModel) TableName() string {
	return "comments"
}

// GormCommentRepository is the GORM-based implementation of comment.Repository.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// FindByItemID retrieves an item's comments, oldest first.
func (r *GormCommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}

	comments := make([]*commentDomain.Comment, len(models))
	for i, m := range models {
		comments[i] = commentDomain.Reconstruct(m.ID, m.ItemID, m.AuthorID, m.AuthorName, m.Text, m.CreatedAt)
	}
	return comments, nil
}

// Save persists a new comment.
func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := &CommentModel{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorID:   c.AuthorID(),
		AuthorName: c.AuthorName(),
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}
