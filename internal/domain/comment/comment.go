package comment

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// Comment is an append-only review left by a past renter of an item.
type Comment struct {
	id         uuid.UUID
	itemID     uuid.UUID
	authorID   uuid.UUID
	authorName string
	text       string
	createdAt  time.Time
}

// NewComment creates a comment. Eligibility (the author must have completed
// a booking of the item) is enforced by the caller, not here.
func NewComment(itemID, authorID uuid.UUID, authorName, text string, now time.Time) (*Comment, error) {
	if text == "" {
		return nil, domain.NewValidationError("comment text is required")
	}
	return &Comment{
		id:         uuid.New(),
		itemID:     itemID,
		authorID:   authorID,
		authorName: authorName,
		text:       text,
		createdAt:  now,
	}, nil
}

// Reconstruct rebuilds a Comment from persistence data.
func Reconstruct(id, itemID, authorID uuid.UUID, authorName, text string, createdAt time.Time) *Comment {
	return &Comment{
		id:         id,
		itemID:     itemID,
		authorID:   authorID,
		authorName: authorName,
		text:       text,
		createdAt:  createdAt,
	}
}

func (c *Comment) ID() uuid.UUID       { return c.id }
func (c *Comment) ItemID() uuid.UUID   { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID { return c.authorID }
func (c *Comment) AuthorName() string  { return c.authorName }
func (c *Comment) Text() string        { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
