package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for the user directory.
// Save and Update return a conflict error on a duplicate email.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
