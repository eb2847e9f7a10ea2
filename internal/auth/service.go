package auth

import (
	"errors"
	"fmt"
	"log"

	"github.com/libtrary/libtrary/internal/config"
	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/entities"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAlreadyConfirmed   = errors.New("email already confirmed")
	ErrStaffNotFound      = errors.New("could not find staff user")
)

// Service handles registration, credential verification, confirmation-token
// redemption and bearer-token resolution.
type Service struct {
	users  *users.Repository
	tokens *Tokens
	cfg    config.Auth
}

// NewService creates a new authentication service.
func NewService(userRepo *users.Repository, tokens *Tokens, cfg config.Auth) *Service {
	return &Service{
		users:  userRepo,
		tokens: tokens,
		cfg:    cfg,
	}
}

// Tokens exposes the token issuer, for handlers that build confirmation links.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Register creates a new inactive user with a hashed password.
// A duplicate email is a conflict regardless of the other fields.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	exists, err := s.users.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials and issues an access/refresh token pair.
// The identity field is matched against the email column. Login is refused
// until the email has been confirmed.
func (s *Service) Authenticate(email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}

	if err := CheckPassword(password, user.Password); err != nil {
		return "", "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", "", ErrEmailNotConfirmed
	}

	accessToken, err = s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err = s.tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue refresh token: %w", err)
	}

	log.Printf("User %s logged in", user.Email)
	return accessToken, refreshToken, nil
}

// ConfirmEmail redeems a confirmation token and activates the account.
func (s *Service) ConfirmEmail(token string) (*entities.User, error) {
	user, err := s.redeemConfirmation(token)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ConfirmStaff redeems a staff-confirmation token and grants staff
// privileges to the account it names.
func (s *Service) ConfirmStaff(token string) (*entities.User, error) {
	user, err := s.redeemConfirmation(token)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetStaff(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendConfirmation reissues a confirmation token after verifying the
// username/email/password triple. Already-confirmed accounts are refused.
func (s *Service) ResendConfirmation(username, email, password string) (string, error) {
	user, err := s.users.GetByUsernameAndEmail(username, email)
	if err != nil {
		return "", err
	}
	if user.IsActive {
		return "", ErrAlreadyConfirmed
	}
	if err := CheckPassword(password, user.Password); err != nil {
		return "", ErrInvalidPassword
	}
	return s.tokens.IssueConfirmationToken(user.Email)
}

// ResolveUser decodes an access token and loads the user it names.
func (s *Service) ResolveUser(token string) (*entities.User, error) {
	subject, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}
	return s.users.GetByEmail(subject)
}

// ResolveStaffUser is ResolveUser with a staff requirement. A resolved user
// without staff privileges is reported as not found rather than forbidden.
func (s *Service) ResolveStaffUser(token string) (*entities.User, error) {
	user, err := s.ResolveUser(token)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff {
		return nil, ErrStaffNotFound
	}
	return user, nil
}

func (s *Service) redeemConfirmation(token string) (*entities.User, error) {
	email, err := s.tokens.VerifyConfirmationToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.users.GetByEmail(email)
}
