package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// =============================================================================
// Mock Repository Types
// =============================================================================

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByResetToken(ctx context.Context, token string, expiryNotBefore time.Time) (*domain.User, error) {
	args := m.Called(ctx, token, expiryNotBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) ReplacePermissions(ctx context.Context, id int64, perms []domain.Permission) error {
	args := m.Called(ctx, id, perms)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListResult[domain.User]), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *mockItemRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockItemRepository) ApplyUpdate(ctx context.Context, id int64, upd repository.ItemUpdate) (*domain.Item, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *mockItemRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockItemRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Item], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListResult[domain.Item]), args.Error(1)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) AddOne(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *mockCartRepository) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *mockCartRepository) GetByUserAndItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CartItem), args.Error(1)
}

func (m *mockCartRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// =============================================================================
// Session helpers
// =============================================================================

// staticLoader returns a fixed user for any id.
type staticLoader struct {
	user *domain.User
}

func (l *staticLoader) LoadUser(ctx context.Context, id int64) (*domain.User, error) {
	if l.user == nil {
		return nil, domain.ErrUserNotFound
	}
	return l.user, nil
}

// sessionFor builds an authenticated session resolving to the given user.
func sessionFor(user *domain.User) *auth.Session {
	return auth.NewSession(user.ID, &staticLoader{user: user})
}
