package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/mail"
	"github.com/prn-tf/shopcore/internal/repository"
)

// resetTokenBytes is the entropy of a reset token; hex-encoded it yields
// a 40-character token.
const resetTokenBytes = 20

// ResetService drives the password reset flow: token issuance with mail
// delivery, then redemption within the validity window.
type ResetService struct {
	users       repository.UserRepository
	hasher      *auth.Hasher
	tokens      *auth.TokenManager
	mailer      mail.Dispatcher
	invalidator UserCacheInvalidator
	frontendURL string
	window      time.Duration
	logger      zerolog.Logger

	now func() time.Time
}

// NewResetService creates a new ResetService. window is how far back a
// token's expiry timestamp may lie and still redeem; the original
// storefront used one hour.
func NewResetService(
	users repository.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenManager,
	mailer mail.Dispatcher,
	invalidator UserCacheInvalidator,
	frontendURL string,
	window time.Duration,
	logger zerolog.Logger,
) *ResetService {
	return &ResetService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		invalidator: invalidator,
		frontendURL: frontendURL,
		window:      window,
		logger:      logger.With().Str("service", "reset").Logger(),
		now:         time.Now,
	}
}

// RequestReset issues a reset token for the account with the given email
// and mails it. The lookup failing reveals whether the email is
// registered; that matches the behavior this flow replaces. The token is
// persisted before the mail goes out, so a delivery failure leaves a
// redeemable token behind and still fails the call.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to load user for reset")
		return domain.WrapUpstream(err)
	}

	token, err := generateResetToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate reset token")
		return domain.WrapUpstream(err)
	}

	expiry := s.now().Add(s.window)
	user.SetResetToken(token, expiry)
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to persist reset token")
		return domain.WrapUpstream(err)
	}

	body := mail.ResetBody(s.frontendURL, token)
	if err := s.mailer.Send(ctx, user.Email, "Your Password Reset Token", body); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to send reset mail")
		return domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("user_id", user.ID).Time("expiry", expiry).Msg("reset token issued")
	return nil
}

// ResetPassword redeems a reset token. The confirmation check runs before
// any store access. A token redeems while its expiry timestamp is no
// older than the window; redemption clears it, so a token is single-use.
func (s *ResetService) ResetPassword(ctx context.Context, token, password, confirm string) (*AuthOutput, error) {
	if password != confirm {
		return nil, domain.ErrPasswordMismatch
	}

	notBefore := s.now().Add(-s.window)
	user, err := s.users.GetByResetToken(ctx, token, notBefore)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		s.logger.Error().Err(err).Msg("failed to look up reset token")
		return nil, domain.WrapUpstream(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash new password")
		return nil, domain.WrapUpstream(err)
	}

	user.PasswordHash = hash
	user.ClearResetToken()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to persist new password")
		return nil, domain.WrapUpstream(err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, user.ID)
	}

	bearer, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset")

	return &AuthOutput{User: user, Token: bearer}, nil
}

// generateResetToken returns a hex-encoded random token.
func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
