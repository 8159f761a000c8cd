package service

import (
	"context"
	"errors"

	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService verifies admin credentials and issues bearer tokens.
type AuthService struct {
	admins domain.AdminStore
	hasher domain.PasswordHasher
	tokens domain.TokenProvider
}

func NewAuthService(admins domain.AdminStore, hasher domain.PasswordHasher, tokens domain.TokenProvider) *AuthService {
	return &AuthService{admins: admins, hasher: hasher, tokens: tokens}
}

// Login returns a bearer token for the admin's organization. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(password, admin.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(admin.ID.String(), admin.Organization)
}
