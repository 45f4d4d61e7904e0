package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shopcore/internal/domain"
)

// countingLoader counts how often the store is hit.
type countingLoader struct {
	user  *domain.User
	calls int
}

func (l *countingLoader) LoadUser(ctx context.Context, id int64) (*domain.User, error) {
	l.calls++
	if l.user == nil || l.user.ID != id {
		return nil, domain.ErrUserNotFound
	}
	return l.user, nil
}

func TestSession_Anonymous(t *testing.T) {
	sess := Anonymous()

	require.False(t, sess.Authenticated())
	require.Equal(t, int64(0), sess.UserID())

	_, err := sess.User(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSession_LazyLoadOnce(t *testing.T) {
	loader := &countingLoader{user: &domain.User{ID: 7, Email: "a@b.com"}}
	sess := NewSession(7, loader)

	require.True(t, sess.Authenticated())
	require.Equal(t, int64(7), sess.UserID())
	require.Zero(t, loader.calls, "construction must not touch the store")

	u1, err := sess.User(context.Background())
	require.NoError(t, err)
	u2, err := sess.User(context.Background())
	require.NoError(t, err)

	require.Same(t, u1, u2)
	require.Equal(t, 1, loader.calls)
}

func TestSession_LoadFailure(t *testing.T) {
	loader := &countingLoader{} // resolves nobody
	sess := NewSession(7, loader)

	_, err := sess.User(context.Background())
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSessionContext_RoundTrip(t *testing.T) {
	sess := NewSession(7, &countingLoader{user: &domain.User{ID: 7}})
	ctx := WithSession(context.Background(), sess)

	require.Same(t, sess, SessionFromContext(ctx))
}

func TestSessionContext_Missing(t *testing.T) {
	sess := SessionFromContext(context.Background())
	require.NotNil(t, sess)
	require.False(t, sess.Authenticated())
}
