package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/project-tracker/internal/domain/apperror"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker/internal/domain/repository"
	"github.com/oksasatya/project-tracker/pkg/helpers"
)

var ErrInvalidCredentials = apperror.New(apperror.Unauthorized, "invalid credentials")

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	GenerateAccessToken(userID, email string) (string, time.Time, error)
}

// IdentityService registers users and authenticates them.
type IdentityService struct {
	Users  repo.UserRepository
	Tokens TokenIssuer
	Logger *logrus.Logger
}

func NewIdentityService(users repo.UserRepository, tokens TokenIssuer, logger *logrus.Logger) *IdentityService {
	return &IdentityService{Users: users, Tokens: tokens, Logger: orDiscard(logger)}
}

// AuthResult is returned by signup and signin.
type AuthResult struct {
	AccessToken string             `json:"access_token"`
	User        *entity.PublicUser `json:"user"`
	ExpiresAt   time.Time          `json:"-"`
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup hashes the password, stores a new user, and issues a token.
// A taken email surfaces as a Conflict from the store.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if !entity.IsEmailAddress(in.Email) {
		return nil, apperror.Validationf("email must be a valid email")
	}
	if in.Password == "" {
		return nil, apperror.Validationf("password is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validationf("name is required")
	}

	hash, err := helpers.HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperror.Wrap(apperror.Validation, "password must be at most 72 bytes", err)
	}
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: in.Email, Name: in.Name, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return s.issue(u.Public())
}

// Signin exchanges valid credentials for a token. Unknown email and wrong
// password fail identically.
func (s *IdentityService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// ValidateCredentials returns the sanitized user when the password matches,
// or nil with no error when it does not. Only store failures are errors.
func (s *IdentityService) ValidateCredentials(ctx context.Context, email, password string) (*entity.PublicUser, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return u.Public(), nil
}

func (s *IdentityService) issue(u *entity.PublicUser) (*AuthResult, error) {
	token, exp, err := s.Tokens.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}
	return &AuthResult{AccessToken: token, User: u, ExpiresAt: exp}, nil
}
