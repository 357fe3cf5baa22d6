package users

import (
	"context"
	"net/url"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
)

// CreateRequest is the payload for registering a new user.
type CreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateRequest changes a user's role or active flag.
type UpdateRequest struct {
	Role     string `json:"role,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Service forwards user administration calls to the backend.
type Service struct {
	api *upstream.Client
}

// NewService constructs the users service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches all registered users.
func (s *Service) List(ctx context.Context, token string) ([]auth.User, error) {
	env, err := s.api.Get(ctx, token, "/auth/users", nil)
	if err != nil {
		return nil, err
	}
	var users []auth.User
	if err := env.Decode("/auth/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create registers a new user with the given role.
func (s *Service) Create(ctx context.Context, token string, req CreateRequest) (auth.User, error) {
	env, err := s.api.Post(ctx, token, "/auth/register", req)
	if err != nil {
		return auth.User{}, err
	}
	var user auth.User
	if err := env.Decode("/auth/register", &user); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

// Update changes role or active state for a user.
func (s *Service) Update(ctx context.Context, token, id string, req UpdateRequest) (auth.User, error) {
	env, err := s.api.Put(ctx, token, "/auth/users/"+url.PathEscape(id), req)
	if err != nil {
		return auth.User{}, err
	}
	var user auth.User
	if err := env.Decode("/auth/users/:id", &user); err != nil {
		return auth.User{}, err
	}
	return user, nil
}
