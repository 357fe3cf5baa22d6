package auth

import (
	"context"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
)

// Service wraps the backend authentication endpoints.
type Service struct {
	api *upstream.Client
}

// NewService constructs a new Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// Login exchanges credentials for a bearer token and the user record.
// On failure nothing is stored and the backend error propagates.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	env, err := s.api.Post(ctx, "", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return User{}, "", err
	}
	var user User
	if err := env.Decode("/auth/login", &user); err != nil {
		return User{}, "", err
	}
	return user, env.Token, nil
}

// Logout invalidates the token upstream. Best-effort: the caller clears the
// session regardless of the outcome.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, err := s.api.Get(ctx, token, "/auth/logout", nil)
	return err
}

// Me fetches the current user for the given token.
func (s *Service) Me(ctx context.Context, token string) (User, error) {
	env, err := s.api.Get(ctx, token, "/auth/me", nil)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := env.Decode("/auth/me", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateDetails changes the user's own profile fields.
func (s *Service) UpdateDetails(ctx context.Context, token, name, email string) (User, error) {
	env, err := s.api.Put(ctx, token, "/auth/updatedetails", map[string]string{
		"name":  name,
		"email": email,
	})
	if err != nil {
		return User{}, err
	}
	var user User
	if err := env.Decode("/auth/updatedetails", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdatePassword changes the user's own password.
func (s *Service) UpdatePassword(ctx context.Context, token, current, next string) error {
	_, err := s.api.Put(ctx, token, "/auth/updatepassword", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	})
	return err
}
