package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/user"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/ksuid"
)

type userStore interface {
	SaveUser(ctx context.Context, u user.User) error
	UserByEmail(ctx context.Context, email string) (user.User, error)
	UserByID(ctx context.Context, id string) (user.User, error)
}

type RegisterRq struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=jobseeker employer"`
	Company  string `json:"company" validate:"max=255"`
}

// bcrypt ignores everything past the 72nd byte and x/crypto refuses to hash
// longer input.
const maxPasswordBytes = 72

type LoginRq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by register and login.
type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

type Service struct {
	users    userStore
	hasher   Hasher
	tokens   *TokenService
	validate *validator.Validate
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users userStore, hasher Hasher, tokens *TokenService) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: apperr.NewValidator(),
		now:      time.Now,
	}
}

func (s *Service) Tokens() *TokenService {
	return s.tokens
}

func (s *Service) Register(ctx context.Context, rq RegisterRq) (Session, error) {
	rq.Name = strings.TrimSpace(rq.Name)
	rq.Email = strings.ToLower(strings.TrimSpace(rq.Email))
	rq.Role = strings.TrimSpace(rq.Role)
	rq.Company = strings.TrimSpace(rq.Company)
	if err := s.validate.Struct(rq); err != nil {
		return Session{}, apperr.FromValidation(err)
	}
	if len(rq.Password) > maxPasswordBytes {
		return Session{}, apperr.Validation("password must be at most 72 bytes")
	}
	role := user.RoleJobseeker
	if rq.Role != "" {
		var err error
		if role, err = user.ParseRole(rq.Role); err != nil {
			return Session{}, apperr.Validation("role must be one of: jobseeker, employer")
		}
	}

	_, err := s.users.UserByEmail(ctx, rq.Email)
	switch {
	case err == nil:
		return Session{}, apperr.DuplicateEmail()
	case !apperr.Is(err, apperr.KindNotFound):
		return Session{}, apperr.Internal(err, "unable to look up user")
	}

	hash, err := s.hasher.Hash(rq.Password)
	if err != nil {
		return Session{}, apperr.Internal(err, "unable to hash password")
	}
	u := user.User{
		ID:           ksuid.New().String(),
		Name:         rq.Name,
		Email:        rq.Email,
		PasswordHash: hash,
		Role:         role,
		Company:      rq.Company,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.SaveUser(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindDuplicateEmail) {
			return Session{}, err
		}
		return Session{}, apperr.Internal(err, "unable to save user")
	}
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, rq LoginRq) (Session, error) {
	rq.Email = strings.ToLower(strings.TrimSpace(rq.Email))
	if err := s.validate.Struct(rq); err != nil {
		return Session{}, apperr.FromValidation(err)
	}
	u, err := s.users.UserByEmail(ctx, rq.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		// same hashing work as a wrong password
		s.hasher.Compare(s.unknownUserHash(), rq.Password)
		return Session{}, apperr.InvalidCredentials()
	}
	if err != nil {
		return Session{}, apperr.Internal(err, "unable to look up user")
	}
	if !s.hasher.Compare(u.PasswordHash, rq.Password) {
		return Session{}, apperr.InvalidCredentials()
	}
	return s.session(u)
}

func (s *Service) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(ksuid.New().String())
	})
	return s.dummyHash
}

func (s *Service) Me(ctx context.Context, id Identity) (user.User, error) {
	u, err := s.users.UserByID(ctx, id.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return user.User{}, err
		}
		return user.User{}, apperr.Internal(err, "unable to look up user")
	}
	return u, nil
}

func (s *Service) session(u user.User) (Session, error) {
	tk, err := s.tokens.Issue(Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tk, User: u}, nil
}

// Authorize fails Forbidden unless id carries one of the allowed roles.
func Authorize(id Identity, allowed ...user.Role) error {
	for _, r := range allowed {
		if id.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("User role " + id.Role.String() + " is not authorized to access this route")
}
