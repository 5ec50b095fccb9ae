package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// User is the aggregate root for a registered account. Email addresses are
// unique across the directory; the store enforces the constraint.
type User struct {
	id    uuid.UUID
	name  string
	email string

	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a user with a validated name and email.
func NewUser(name, email string, now time.Time) (*User, error) {
	if name == "" {
		return nil, domain.NewValidationError("user name is required")
	}
	if !isPlausibleEmail(email) {
		return nil, domain.NewValidationError("a valid email address is required")
	}

	return &User{
		id:        uuid.New(),
		name:      name,
		email:     email,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, email string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:        id,
		name:      name,
		email:     email,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Update applies a partial update; empty fields keep their current value.
func (u *User) Update(name, email string, now time.Time) error {
	if email != "" && !isPlausibleEmail(email) {
		return domain.NewValidationError("a valid email address is required")
	}
	if name != "" {
		u.name = name
	}
	if email != "" {
		u.email = email
	}
	u.updatedAt = now
	return nil
}

func isPlausibleEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
