// Package cache provides caching helpers built on the repository.Cache
// interface. Backend implementations live in the redis and memory
// subpackages.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// cachedUser is the stored projection of a user. The password hash is
// deliberately excluded; nothing resolving a session needs it.
type cachedUser struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Permissions []domain.Permission `json:"permissions"`
}

// UserLoader resolves users by id through the cache, falling back to the
// user repository on a miss. It implements auth.UserLoader for session
// resolution. Cache entries carry a short TTL, so a permission change is
// visible to new sessions within at most that window.
type UserLoader struct {
	users  repository.UserRepository
	cache  repository.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewUserLoader creates a UserLoader. A nil cache disables caching and
// every load goes straight to the repository.
func NewUserLoader(users repository.UserRepository, cache repository.Cache, ttl time.Duration, logger zerolog.Logger) *UserLoader {
	return &UserLoader{
		users:  users,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "user-loader").Logger(),
	}
}

// LoadUser resolves a user by id.
func (l *UserLoader) LoadUser(ctx context.Context, id int64) (*domain.User, error) {
	key := userKey(id)

	if l.cache != nil {
		if data, err := l.cache.Get(ctx, key); err == nil {
			var cu cachedUser
			if err := json.Unmarshal(data, &cu); err == nil {
				return &domain.User{
					ID:          cu.ID,
					Name:        cu.Name,
					Email:       cu.Email,
					Permissions: cu.Permissions,
				}, nil
			}
			// Corrupt entry; drop it and fall through to the store.
			_ = l.cache.Delete(ctx, key)
		}
	}

	user, err := l.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		data, err := json.Marshal(cachedUser{
			ID:          user.ID,
			Name:        user.Name,
			Email:       user.Email,
			Permissions: user.Permissions,
		})
		if err == nil {
			if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
				l.logger.Debug().Err(err).Int64("user_id", id).Msg("failed to cache user")
			}
		}
	}

	return user, nil
}

// Invalidate drops the cached entry for a user. Called after mutations
// that change what a session is allowed to do.
func (l *UserLoader) Invalidate(ctx context.Context, id int64) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, userKey(id)); err != nil {
		l.logger.Debug().Err(err).Int64("user_id", id).Msg("failed to invalidate cached user")
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
