package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/pkg/auth"
	"github.com/shareloop/service-sharing/pkg/clock"
)

// CreateUserRequest holds the data needed to register a new user.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// UpdateUserRequest holds a partial user update. Nil fields are untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserDTO is the response representation of a user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisteredUserDTO is the registration response: the user plus an access
// token for subsequent requests and a refresh token to renew it.
type RegisteredUserDTO struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

// UserService manages the user directory.
type UserService struct {
	users      userDomain.Repository
	jwtManager *auth.JWTManager
	clock      clock.Clock
	logger     *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users userDomain.Repository, jwtManager *auth.JWTManager, clk clock.Clock, logger *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		jwtManager: jwtManager,
		clock:      clk,
		logger:     logger,
	}
}

// Register creates a new user and issues an access token. A duplicate
// email yields a conflict error.
func (s *UserService) Register(ctx context.Context, req CreateUserRequest) (*RegisteredUserDTO, error) {
	u, err := userDomain.NewUser(req.Name, req.Email, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	access, err := s.jwtManager.GenerateAccessToken(u.ID(), auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(u.ID(), auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID().String()))

	return &RegisteredUserDTO{User: toUserDTO(u), AccessToken: access, RefreshToken: refresh}, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	return dtos, nil
}

// Update applies a partial update to a user. Changing the email to one
// already registered yields a conflict error.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := u.Name()
	if req.Name != nil {
		name = *req.Name
	}
	email := u.Email()
	if req.Email != nil {
		email = *req.Email
	}
	if err := u.Update(name, email, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", id.String()))

	dto := toUserDTO(u)
	return &dto, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		CreatedAt: u.CreatedAt(),
	}
}
