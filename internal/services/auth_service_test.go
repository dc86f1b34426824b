package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubAuthStore struct {
	usersByEmail map[string]*User
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{usersByEmail: map[string]*User{}}
}

func (s *stubAuthStore) FindUserByEmail(email string) (*User, error) {
	if u, ok := s.usersByEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *stubAuthStore) InsertUser(u *User) error {
	cp := *u
	s.usersByEmail[u.Email] = &cp
	return nil
}

func staticSigner(uid, email, role string, ttl time.Duration) (string, error) {
	return "tok-" + uid, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, staticSigner)

	res, err := svc.Register("tester@example.com", "hunter2hunter2", "Alex", "")
	require.NoError(t, err)
	require.Equal(t, RoleTester, res.Role, "role defaults to tester")
	require.NotEmpty(t, res.Token)

	// Password hash is stored, never the password itself.
	u := store.usersByEmail["tester@example.com"]
	require.NotEmpty(t, u.PassHash)
	require.NotContains(t, string(u.PassHash), "hunter2hunter2")

	login, err := svc.Login("tester@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, res.UserID, login.UserID)

	_, err = svc.Login("tester@example.com", "wrong")
	require.True(t, IsCode(err, ErrorUnauthorized))

	_, err = svc.Login("nobody@example.com", "hunter2hunter2")
	require.True(t, IsCode(err, ErrorUnauthorized))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), staticSigner)
	_, err := svc.Register("a@example.com", "password123", "A", RoleCreator)
	require.NoError(t, err)
	_, err = svc.Register("a@example.com", "password456", "B", RoleTester)
	require.True(t, IsCode(err, ErrorConflict))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), staticSigner)
	_, err := svc.Register("", "password123", "A", "")
	require.True(t, IsCode(err, ErrorInvalid))
	_, err = svc.Register("a@example.com", " ", "A", "")
	require.True(t, IsCode(err, ErrorInvalid))
	_, err = svc.Register("a@example.com", "password123", "A", "superuser")
	require.True(t, IsCode(err, ErrorInvalid))
}
