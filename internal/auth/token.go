package auth

import (
	"fmt"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/user"

	jwt "github.com/dgrijalva/jwt-go"
)

const issuer = "internhill"

// Identity is what a verified bearer token resolves to.
type Identity struct {
	UserID string
	Role   user.Role
}

type UserJWT struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenService(key []byte, ttl time.Duration) *TokenService {
	return &TokenService{key: key, ttl: ttl, now: time.Now}
}

func (s *TokenService) Issue(id Identity) (string, error) {
	now := s.now().UTC()
	claims := UserJWT{
		ID:   id.UserID,
		Role: id.Role.String(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
			Subject:   id.UserID,
		},
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := tkn.SignedString(s.key)
	if err != nil {
		return "", apperr.Internal(err, "unable to sign token")
	}
	return ss, nil
}

// Parse fails Unauthenticated for anything but a well formed, correctly
// signed, unexpired token carrying a known role.
func (s *TokenService) Parse(tk string) (Identity, error) {
	if tk == "" {
		return Identity{}, apperr.Unauthenticated("Not authorized, no token")
	}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(tk, &UserJWT{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperr.Unauthenticated("Not authorized, token failed")
	}
	claims, ok := token.Claims.(*UserJWT)
	if !ok || claims.ID == "" {
		return Identity{}, apperr.Unauthenticated("Not authorized, token failed")
	}
	role, err := user.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, apperr.Unauthenticated("Not authorized, token failed")
	}
	return Identity{UserID: claims.ID, Role: role}, nil
}
