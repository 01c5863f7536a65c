package services

import (
	stderrors "errors"
	"fmt"
	"time"

	"connectrix/auth"
	"connectrix/domain"
	"connectrix/errors"
	"connectrix/repositories"
)

type IAccountService interface {
	Upsert(req auth.UpsertRequest) (domain.User, string, error)
	Register(req auth.RegisterRequest) (domain.User, string, error)
	Login(req auth.LoginRequest) (domain.User, string, error)
}

// AccountService backs the account endpoints: it makes a user id known to
// the presence system and issues the session token used by both the HTTP
// and socket surfaces. Google sign-in arrives pre-verified (Upsert);
// local-credential accounts go through Register/Login with an argon2id
// hash stored on the user document.
type AccountService struct {
	users         repositories.IUserRepository
	tokenDuration time.Duration
}

func NewAccountService(users repositories.IUserRepository, tokenDuration time.Duration) IAccountService {
	return &AccountService{users: users, tokenDuration: tokenDuration}
}

func (s *AccountService) Upsert(req auth.UpsertRequest) (domain.User, string, error) {
	if err := auth.ValidateUpsert(req); err != nil {
		return domain.User{}, "", fmt.Errorf("invalid upsert request: %w", err)
	}

	user, _, err := s.users.Upsert(req.Email, req.Name, domain.Role(req.Role))
	if err != nil {
		return domain.User{}, "", err
	}
	return s.issue(user)
}

// Register upserts a local-credential account and stores its password
// hash. Re-registering an existing email rotates the credential, matching
// the upsert semantics of the Google seam.
func (s *AccountService) Register(req auth.RegisterRequest) (domain.User, string, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return domain.User{}, "", fmt.Errorf("invalid register request: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("password hashing failed: %w", err)
	}

	user, _, err := s.users.Upsert(req.Email, req.Name, domain.Role(req.Role))
	if err != nil {
		return domain.User{}, "", err
	}
	if err = s.users.SetPassword(user.ID, hash); err != nil {
		return domain.User{}, "", err
	}
	return s.issue(user)
}

// Login verifies a local credential and issues a token. Unknown emails
// and wrong passwords collapse into the same error so the endpoint does
// not leak which emails exist.
func (s *AccountService) Login(req auth.LoginRequest) (domain.User, string, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return domain.User{}, "", fmt.Errorf("invalid login request: %w", err)
	}

	user, err := s.users.GetByEmail(req.Email)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, "", err
	}
	if user.PasswordHash == "" {
		// Google-only account, no local credential to check.
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	ok, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("password comparison failed: %w", err)
	}
	if !ok {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AccountService) issue(user domain.User) (domain.User, string, error) {
	token, err := auth.GenerateToken(user.ID, user.Role, s.tokenDuration)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}
	// The hash never crosses the API boundary.
	user.PasswordHash = ""
	return user, token, nil
}
