package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository/sqlite"
)

func newTestResetService(users *mockUserRepository, mailer *mockDispatcher, now time.Time) *ResetService {
	svc := NewResetService(
		users,
		auth.NewHasher(4),
		auth.NewTokenManager([]byte("test-secret")),
		mailer,
		nil,
		"http://localhost:7777",
		time.Hour,
		zerolog.Nop(),
	)
	svc.now = func() time.Time { return now }
	return svc
}

func TestResetService_RequestReset(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("issues token, persists it, sends one mail", func(t *testing.T) {
		users := &mockUserRepository{}
		mailer := &mockDispatcher{}
		svc := newTestResetService(users, mailer, now)

		user := &domain.User{ID: 1, Email: "a@b.com"}
		users.On("GetByEmail", mock.Anything, "a@b.com").Return(user, nil)

		var persisted *domain.User
		users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.User) }).
			Return(nil)

		var mailedBody string
		mailer.On("Send", mock.Anything, "a@b.com", "Your Password Reset Token", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { mailedBody = args.Get(3).(string) }).
			Return(nil).
			Once()

		err := svc.RequestReset(context.Background(), "A@B.com")
		require.NoError(t, err)

		require.NotNil(t, persisted.ResetToken)
		require.Len(t, *persisted.ResetToken, 40) // 20 random bytes, hex encoded
		require.NotNil(t, persisted.ResetTokenExpiry)
		require.Equal(t, now.Add(time.Hour), *persisted.ResetTokenExpiry)

		// The mail embeds the exact token that was persisted.
		require.Contains(t, mailedBody, *persisted.ResetToken)
		mock.AssertExpectationsForObjects(t, users, mailer)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := &mockUserRepository{}
		mailer := &mockDispatcher{}
		svc := newTestResetService(users, mailer, now)

		users.On("GetByEmail", mock.Anything, "nobody@b.com").Return(nil, domain.ErrUserNotFound)

		err := svc.RequestReset(context.Background(), "nobody@b.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail failure fails the call after the token is persisted", func(t *testing.T) {
		users := &mockUserRepository{}
		mailer := &mockDispatcher{}
		svc := newTestResetService(users, mailer, now)

		user := &domain.User{ID: 1, Email: "a@b.com"}
		users.On("GetByEmail", mock.Anything, "a@b.com").Return(user, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp: connection refused"))

		err := svc.RequestReset(context.Background(), "a@b.com")
		require.ErrorIs(t, err, domain.ErrUpstream)

		// The token write happened before the send attempt.
		users.AssertExpectations(t)
	})
}

func TestResetService_ResetPassword(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	t.Run("mismatch fails before any store access", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := newTestResetService(users, &mockDispatcher{}, now)

		_, err := svc.ResetPassword(context.Background(), token, "new-pass", "other-pass")
		require.ErrorIs(t, err, domain.ErrPasswordMismatch)

		// No expectations were registered; any repository call would fail
		// the mock, proving the check runs first.
		users.AssertExpectations(t)
	})

	t.Run("redeems, clears the token, re-hashes, signs in", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := newTestResetService(users, &mockDispatcher{}, now)

		expiry := now.Add(30 * time.Minute)
		user := &domain.User{ID: 9, Email: "a@b.com"}
		user.SetResetToken(token, expiry)

		// The lookup window slides one hour back from now; a token whose
		// expiry sits exactly on that edge still redeems.
		users.On("GetByResetToken", mock.Anything, token, now.Add(-time.Hour)).Return(user, nil)

		var persisted *domain.User
		users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.User) }).
			Return(nil)

		out, err := svc.ResetPassword(context.Background(), token, "new-pass", "new-pass")
		require.NoError(t, err)

		require.Nil(t, persisted.ResetToken)
		require.Nil(t, persisted.ResetTokenExpiry)
		require.True(t, auth.NewHasher(4).Verify("new-pass", persisted.PasswordHash))

		userID, err := auth.NewTokenManager([]byte("test-secret")).Parse(out.Token)
		require.NoError(t, err)
		require.Equal(t, int64(9), userID)

		users.AssertExpectations(t)
	})

	t.Run("no matching token", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := newTestResetService(users, &mockDispatcher{}, now)

		users.On("GetByResetToken", mock.Anything, token, now.Add(-time.Hour)).
			Return(nil, domain.ErrUserNotFound)

		_, err := svc.ResetPassword(context.Background(), token, "p", "p")
		require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	})

	t.Run("second redemption fails once the token is cleared", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := newTestResetService(users, &mockDispatcher{}, now)

		user := &domain.User{ID: 9, Email: "a@b.com"}
		user.SetResetToken(token, now.Add(time.Hour))

		users.On("GetByResetToken", mock.Anything, token, mock.Anything).Return(user, nil).Once()
		users.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		// After the clear the stored token is gone, so the lookup misses.
		users.On("GetByResetToken", mock.Anything, token, mock.Anything).Return(nil, domain.ErrUserNotFound).Once()

		_, err := svc.ResetPassword(context.Background(), token, "p", "p")
		require.NoError(t, err)

		_, err = svc.ResetPassword(context.Background(), token, "p", "p")
		require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
		users.AssertExpectations(t)
	})
}

// TestResetWindowBoundary pins the redemption window at both edges against
// the embedded store, where the expiry filter actually runs. The store
// matches expiry >= now - 1h, and expiry itself is issued one hour ahead,
// so a freshly issued token stays redeemable for two hours of wall time.
func TestResetWindowBoundary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	tests := []struct {
		name    string
		expiry  time.Time
		wantErr error
	}{
		{"freshly issued token", now.Add(time.Hour), nil},
		{"expiry exactly one hour old", now.Add(-time.Hour), nil},
		{"one second past the window", now.Add(-time.Hour - time.Second), domain.ErrInvalidOrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			require.NoError(t, db.Migrate(ctx))
			users := sqlite.NewUserRepository(db)

			seeded := domain.NewUser("Ada", "a@b.com", "old-hash")
			seeded.SetResetToken(token, tt.expiry)
			require.NoError(t, users.Create(ctx, seeded))

			svc := NewResetService(
				users,
				auth.NewHasher(4),
				auth.NewTokenManager([]byte("test-secret")),
				&mockDispatcher{},
				nil,
				"http://localhost:7777",
				time.Hour,
				zerolog.Nop(),
			)
			svc.now = func() time.Time { return now }

			out, err := svc.ResetPassword(ctx, token, "new-pass", "new-pass")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			// Redemption cleared the token and re-hashed the password.
			after, err := users.GetByID(ctx, out.User.ID)
			require.NoError(t, err)
			require.Nil(t, after.ResetToken)
			require.Nil(t, after.ResetTokenExpiry)
			require.True(t, auth.NewHasher(4).Verify("new-pass", after.PasswordHash))
		})
	}
}
