package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vowsuite/vowsuite/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims bound to an admin session.
type Claims struct {
	jwt.RegisteredClaims
	AdminID      string `json:"admin_id"`
	Organization string `json:"organization"`
}

// TokenService issues and validates HS256 bearer tokens embedding the
// admin's id and organization.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

func (s *TokenService) Issue(adminID, organization string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		AdminID:      adminID,
		Organization: organization,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) Validate(token string) (*domain.TokenClaims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &domain.TokenClaims{
		AdminID:      claims.AdminID,
		Organization: claims.Organization,
	}, nil
}
