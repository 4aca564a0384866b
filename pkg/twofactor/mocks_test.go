package twofactor_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authcore/pkg/twofactor"
)

// memUserStore is an in-memory UserStore. It hands out copies so service code
// can only mutate records through Update, same as a real database.
type memUserStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*twofactor.User
	updateErr error
}

func newMemUserStore(users ...*twofactor.User) *memUserStore {
	store := &memUserStore{users: make(map[uuid.UUID]*twofactor.User)}
	for _, u := range users {
		store.users[u.ID] = cloneUser(u)
	}
	return store
}

func cloneUser(u *twofactor.User) *twofactor.User {
	clone := *u
	if u.TFASecret != nil {
		secret := *u.TFASecret
		clone.TFASecret = &secret
	}
	clone.TFARecoveryCodes = slices.Clone(u.TFARecoveryCodes)
	return &clone
}

func (s *memUserStore) FindByID(_ context.Context, id uuid.UUID) (*twofactor.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, twofactor.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*twofactor.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, twofactor.ErrUserNotFound
}

func (s *memUserStore) Update(_ context.Context, id uuid.UUID, update twofactor.UserUpdate) (*twofactor.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return nil, s.updateErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, twofactor.ErrUserNotFound
	}
	update.Apply(user)
	return cloneUser(user), nil
}

// get returns the stored record for assertions on persisted state.
func (s *memUserStore) get(id uuid.UUID) *twofactor.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.users[id])
}

// plainHasher is a transparent PasswordHasher so tests stay fast and hash
// values stay assertable.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "plain:" + plaintext, nil }

func (plainHasher) Verify(hash, plaintext string) bool { return hash == "plain:"+plaintext }

// captureInitiator records lockout-triggered reset requests on a channel so
// tests can wait for the fire-and-forget goroutine.
type captureInitiator struct {
	calls chan uuid.UUID
	err   error
}

func newCaptureInitiator() *captureInitiator {
	return &captureInitiator{calls: make(chan uuid.UUID, 1)}
}

func (c *captureInitiator) InitiatePasswordReset(_ context.Context, user *twofactor.User) error {
	c.calls <- user.ID
	return c.err
}

func (c *captureInitiator) wait(timeout time.Duration) (uuid.UUID, bool) {
	select {
	case id := <-c.calls:
		return id, true
	case <-time.After(timeout):
		return uuid.Nil, false
	}
}
