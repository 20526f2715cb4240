package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/auth/repository"
	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/logger"
)

const testSecret = "test-secret-key-that-is-32-bytes!!"

type mockUserRepo struct {
	insertFunc         func(ctx context.Context, username, passwordHash string) (domain.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (domain.User, error)
}

func (m *mockUserRepo) Insert(ctx context.Context, username, passwordHash string) (domain.User, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, username, passwordHash)
	}
	return domain.User{ID: "user-1", Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.User{}, repository.ErrUserNotFound
}

type mockHasher struct {
	hashFunc   func(password string) (string, error)
	verifyFunc func(password, hash string) bool
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Verify(password, hash string) bool {
	if m.verifyFunc != nil {
		return m.verifyFunc(password, hash)
	}
	return hash == "hashed_"+password
}

type mockMirror struct {
	mu    sync.Mutex
	users []domain.User
}

func (m *mockMirror) Mirror(_ context.Context, user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, user)
}

func (m *mockMirror) mirrored() []domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.User(nil), m.users...)
}

// memoryRepo enforces username uniqueness the way the real stores do.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
	next  int
	now   func() time.Time
}

func newMemoryRepo(clk clock.Clock) *memoryRepo {
	return &memoryRepo{users: make(map[string]domain.User), now: clk.Now}
}

func (r *memoryRepo) Insert(_ context.Context, username, passwordHash string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; ok {
		return domain.User{}, repository.ErrUsernameAlreadyExists
	}
	r.next++
	user := domain.User{
		ID:           domain.UserID(fmt.Sprintf("user-%d", r.next)),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    r.now(),
	}
	r.users[username] = user
	return user, nil
}

func (r *memoryRepo) FindByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepo) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "test", "ERROR")
}

func testClock() *clock.MockClock {
	return clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func setupAuthService(t *testing.T) (*AuthService, *mockUserRepo, *mockHasher, *mockMirror, *clock.MockClock) {
	t.Helper()

	repo := &mockUserRepo{}
	hasher := &mockHasher{}
	mirror := &mockMirror{}
	clk := testClock()
	codec := NewJWTCodec(testSecret, 30*time.Minute, clk)

	return NewAuthService(repo, hasher, codec, mirror, testLogger()), repo, hasher, mirror, clk
}
