// Package service provides the business logic for shopcore mutations.
// Services take an explicit Session where an operation is gated on the
// caller; operations without a session argument are deliberately open.
package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// UserCacheInvalidator drops a cached user projection after a mutation
// that changes what the user's sessions may do.
type UserCacheInvalidator interface {
	Invalidate(ctx context.Context, userID int64)
}

// AccountService handles signup, signin, and permission management.
type AccountService struct {
	users       repository.UserRepository
	hasher      *auth.Hasher
	tokens      *auth.TokenManager
	invalidator UserCacheInvalidator
	logger      zerolog.Logger
}

// NewAccountService creates a new AccountService. invalidator may be nil
// when no user cache is in play.
func NewAccountService(
	users repository.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenManager,
	invalidator UserCacheInvalidator,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		invalidator: invalidator,
		logger:      logger.With().Str("service", "account").Logger(),
	}
}

// SignUpInput contains the data needed to register a new user.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// AuthOutput is the result of any operation that establishes a session.
type AuthOutput struct {
	User  *domain.User
	Token string
}

// SignUp registers a new user. The email is normalized to lowercase, the
// new account gets the USER permission, and a bearer token is issued so
// the caller is signed in immediately.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (*AuthOutput, error) {
	email := domain.NormalizeEmail(input.Email)

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, domain.WrapUpstream(err)
	}

	user := domain.NewUser(input.Name, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, domain.WrapUpstream(err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", email).Msg("user signed up")

	return &AuthOutput{User: user, Token: token}, nil
}

// SignIn verifies email and password and issues a bearer token. Both an
// unknown email and a wrong password fail with InvalidCredentials so the
// response does not reveal which half was wrong.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*AuthOutput, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Str("email", email).Msg("signin for unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to load user for signin")
		return nil, domain.WrapUpstream(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Debug().Int64("user_id", user.ID).Msg("signin with wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user signed in")

	return &AuthOutput{User: user, Token: token}, nil
}

// Me returns the current session user.
func (s *AccountService) Me(ctx context.Context, sess *auth.Session) (*domain.User, error) {
	return sess.User(ctx)
}

// UpdatePermissions replaces the target user's permission set wholesale.
// The caller must be signed in and hold ADMIN or PERMISSION_UPDATE.
func (s *AccountService) UpdatePermissions(ctx context.Context, sess *auth.Session, targetID int64, perms []domain.Permission) (*domain.User, error) {
	actor, err := sess.User(ctx)
	if err != nil {
		return nil, err
	}

	if !actor.HasAnyPermission(domain.PermissionAdmin, domain.PermissionPermissionUpdate) {
		s.logger.Debug().
			Int64("actor_id", actor.ID).
			Int64("target_id", targetID).
			Msg("permission update denied")
		return nil, domain.ErrPermissionDenied
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.WrapUpstream(err)
	}

	if err := s.users.ReplacePermissions(ctx, target.ID, perms); err != nil {
		s.logger.Error().Err(err).Int64("target_id", target.ID).Msg("failed to replace permissions")
		return nil, domain.WrapUpstream(err)
	}
	target.Permissions = perms

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, target.ID)
	}

	s.logger.Info().
		Int64("actor_id", actor.ID).
		Int64("target_id", target.ID).
		Interface("permissions", perms).
		Msg("permissions replaced")

	return target, nil
}
