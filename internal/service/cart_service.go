package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// CartService handles cart mutations for the session user.
type CartService struct {
	carts  repository.CartRepository
	items  repository.ItemRepository
	logger zerolog.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repository.CartRepository, items repository.ItemRepository, logger zerolog.Logger) *CartService {
	return &CartService{
		carts:  carts,
		items:  items,
		logger: logger.With().Str("service", "cart").Logger(),
	}
}

// AddToCart puts one unit of the item in the session user's cart. Adding
// an item already in the cart increments the existing row's quantity;
// the merge is a single atomic statement in the store, so concurrent
// adds never produce duplicate rows.
func (s *CartService) AddToCart(ctx context.Context, sess *auth.Session, itemID int64) (*domain.CartItem, error) {
	user, err := sess.User(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.ErrItemNotFound
		}
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to load item for cart add")
		return nil, domain.WrapUpstream(err)
	}

	entry, err := s.carts.AddOne(ctx, user.ID, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.ErrItemNotFound
		}
		s.logger.Error().Err(err).
			Int64("user_id", user.ID).
			Int64("item_id", itemID).
			Msg("failed to add to cart")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Int64("item_id", itemID).
		Int("quantity", entry.Quantity).
		Msg("item added to cart")

	return entry, nil
}

// Contents returns every cart entry belonging to the session user.
func (s *CartService) Contents(ctx context.Context, sess *auth.Session) ([]*domain.CartItem, error) {
	user, err := sess.User(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.carts.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list cart")
		return nil, domain.WrapUpstream(err)
	}
	return entries, nil
}

// RemoveFromCart deletes a cart entry owned by the session user and
// returns its prior state. Removing someone else's entry fails with
// OwnershipViolation and leaves the row untouched.
func (s *CartService) RemoveFromCart(ctx context.Context, sess *auth.Session, cartItemID int64) (*domain.CartItem, error) {
	user, err := sess.User(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.carts.GetByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		s.logger.Error().Err(err).Int64("cart_item_id", cartItemID).Msg("failed to load cart entry")
		return nil, domain.WrapUpstream(err)
	}

	if entry.UserID != user.ID {
		s.logger.Debug().
			Int64("cart_item_id", cartItemID).
			Int64("owner_id", entry.UserID).
			Int64("user_id", user.ID).
			Msg("cart removal denied")
		return nil, domain.ErrOwnershipViolation
	}

	if err := s.carts.Delete(ctx, cartItemID); err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		s.logger.Error().Err(err).Int64("cart_item_id", cartItemID).Msg("failed to delete cart entry")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Int64("cart_item_id", cartItemID).
		Msg("item removed from cart")

	return entry, nil
}
