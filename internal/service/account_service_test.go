package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
)

func newTestAccountService() (*AccountService, *mockUserRepository, *auth.Hasher, *auth.TokenManager) {
	users := &mockUserRepository{}
	hasher := auth.NewHasher(4) // minimum cost keeps the tests fast
	tokens := auth.NewTokenManager([]byte("test-secret"))
	svc := NewAccountService(users, hasher, tokens, nil, zerolog.Nop())
	return svc, users, hasher, tokens
}

func TestAccountService_SignUp(t *testing.T) {
	svc, users, hasher, tokens := newTestAccountService()

	var created *domain.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
			created.ID = 42
		}).
		Return(nil)

	out, err := svc.SignUp(context.Background(), SignUpInput{
		Name:     "Ada",
		Email:    "A@B.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	// Email is normalized and the baseline permission granted.
	require.Equal(t, "a@b.com", created.Email)
	require.Equal(t, []domain.Permission{domain.PermissionUser}, created.Permissions)

	// The stored hash verifies and the issued token asserts the new id.
	require.True(t, hasher.Verify("hunter22", created.PasswordHash))
	userID, err := tokens.Parse(out.Token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)

	users.AssertExpectations(t)
}

func TestAccountService_SignUp_EmailTaken(t *testing.T) {
	svc, users, _, _ := newTestAccountService()

	users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailTaken)

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "a@b.com", Password: "x"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccountService_SignIn(t *testing.T) {
	hasher := auth.NewHasher(4)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	user := &domain.User{ID: 7, Email: "a@b.com", PasswordHash: hash}

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(*mockUserRepository)
		wantErr  error
	}{
		{
			name:     "success with mixed-case email",
			email:    "A@B.com",
			password: "correct-horse",
			setup: func(users *mockUserRepository) {
				users.On("GetByEmail", mock.Anything, "a@b.com").Return(user, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "a@b.com",
			password: "battery-staple",
			setup: func(users *mockUserRepository) {
				users.On("GetByEmail", mock.Anything, "a@b.com").Return(user, nil)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@b.com",
			password: "whatever",
			setup: func(users *mockUserRepository) {
				users.On("GetByEmail", mock.Anything, "nobody@b.com").Return(nil, domain.ErrUserNotFound)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserRepository{}
			tokens := auth.NewTokenManager([]byte("test-secret"))
			svc := NewAccountService(users, hasher, tokens, nil, zerolog.Nop())
			tt.setup(users)

			out, err := svc.SignIn(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				userID, err := tokens.Parse(out.Token)
				require.NoError(t, err)
				require.Equal(t, user.ID, userID)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAccountService_UpdatePermissions(t *testing.T) {
	target := func() *domain.User {
		return &domain.User{ID: 2, Email: "t@b.com", Permissions: []domain.Permission{domain.PermissionUser}}
	}
	newPerms := []domain.Permission{domain.PermissionUser, domain.PermissionItemDelete}

	tests := []struct {
		name    string
		actor   *domain.User
		setup   func(*mockUserRepository)
		wantErr error
	}{
		{
			name:  "admin can replace",
			actor: &domain.User{ID: 1, Permissions: []domain.Permission{domain.PermissionAdmin}},
			setup: func(users *mockUserRepository) {
				users.On("GetByID", mock.Anything, int64(2)).Return(target(), nil)
				users.On("ReplacePermissions", mock.Anything, int64(2), newPerms).Return(nil)
			},
		},
		{
			name:  "permission-update tag suffices",
			actor: &domain.User{ID: 1, Permissions: []domain.Permission{domain.PermissionPermissionUpdate}},
			setup: func(users *mockUserRepository) {
				users.On("GetByID", mock.Anything, int64(2)).Return(target(), nil)
				users.On("ReplacePermissions", mock.Anything, int64(2), newPerms).Return(nil)
			},
		},
		{
			name:    "plain user denied",
			actor:   &domain.User{ID: 1, Permissions: []domain.Permission{domain.PermissionUser}},
			setup:   func(users *mockUserRepository) {},
			wantErr: domain.ErrPermissionDenied,
		},
		{
			name:  "target missing",
			actor: &domain.User{ID: 1, Permissions: []domain.Permission{domain.PermissionAdmin}},
			setup: func(users *mockUserRepository) {
				users.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrUserNotFound)
			},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserRepository{}
			svc := NewAccountService(users, auth.NewHasher(4), auth.NewTokenManager([]byte("s")), nil, zerolog.Nop())
			tt.setup(users)

			got, err := svc.UpdatePermissions(context.Background(), sessionFor(tt.actor), 2, newPerms)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, newPerms, got.Permissions)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAccountService_UpdatePermissions_Unauthenticated(t *testing.T) {
	users := &mockUserRepository{}
	svc := NewAccountService(users, auth.NewHasher(4), auth.NewTokenManager([]byte("s")), nil, zerolog.Nop())

	_, err := svc.UpdatePermissions(context.Background(), auth.Anonymous(), 2, nil)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	users.AssertExpectations(t)
}
