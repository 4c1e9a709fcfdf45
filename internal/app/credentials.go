package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brainquiz/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hides the hashing scheme from the credential store.
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) error
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) ([]byte, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

func (h BcryptHasher) Compare(hash []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

// CredentialService registers and verifies users.
type CredentialService struct {
	users  UserRepository
	hasher PasswordHasher
	admins map[string]struct{}
	now    func() time.Time
}

func NewCredentialService(users UserRepository, hasher PasswordHasher, admins []string) *CredentialService {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		set[strings.TrimSpace(a)] = struct{}{}
	}
	return &CredentialService{users: users, hasher: hasher, admins: set, now: time.Now}
}

// Register creates a new account. An existing account is never overwritten and
// administrator names are reserved for ProvisionAdmins.
func (s *CredentialService) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Invalid("username", "Username cannot be left blank")
	}
	if password == "" {
		return domain.Invalid("password", "Password cannot be left blank")
	}
	if password != confirm {
		return domain.Invalid("password_confirm", "Passwords don't match")
	}
	if s.IsAdmin(username) {
		return domain.ErrDuplicateUser
	}
	return s.create(ctx, username, password)
}

// ProvisionAdmins creates an account with password for every configured
// administrator that has none yet. It returns the number of accounts created.
func (s *CredentialService) ProvisionAdmins(ctx context.Context, password string) (int, error) {
	if password == "" {
		return 0, nil
	}
	created := 0
	for name := range s.admins {
		err := s.create(ctx, name, password)
		if errors.Is(err, domain.ErrDuplicateUser) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("provision admin %s: %w", name, err)
		}
		created++
	}
	return created, nil
}

func (s *CredentialService) create(ctx context.Context, username, password string) error {
	if _, err := s.users.Get(ctx, username); err == nil {
		return domain.ErrDuplicateUser
	} else if !errors.Is(err, domain.ErrUnknownUser) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
}

// Verify checks a login attempt and returns the stored username.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.Get(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", domain.ErrInvalidCredential
		}
		return "", fmt.Errorf("compare password: %w", err)
	}
	return user.Username, nil
}

// IsAdmin reports whether username is a configured administrator.
func (s *CredentialService) IsAdmin(username string) bool {
	_, ok := s.admins[username]
	return ok
}
