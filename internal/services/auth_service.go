package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles known to the platform. The engine itself only distinguishes
// admins (application review) from everyone else.
const (
	RoleTester  = "tester"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// AuthStore is the slice of the user registry the auth collaborator needs.
type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	InsertUser(u *User) error
}

// TokenSigner mints an access token for an authenticated user.
type TokenSigner func(uid, email, role string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func() string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token  string
	UserID string
	Role   string
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func() string { return "u" + shortID(7) },
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

func validRole(role string) bool {
	switch role {
	case RoleTester, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

func (s *AuthService) Register(email, password, name, role string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	if role == "" {
		role = RoleTester
	}
	if !validRole(role) {
		return nil, NewInvalidError("unknown role")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:        s.idGen(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      role,
		PassHash:  hash,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertUser(u); err != nil {
		return nil, err
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Role: u.Role}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Role: u.Role}, nil
}
