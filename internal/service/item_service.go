package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// ItemService handles catalog item mutations.
type ItemService struct {
	items  repository.ItemRepository
	logger zerolog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(items repository.ItemRepository, logger zerolog.Logger) *ItemService {
	return &ItemService{
		items:  items,
		logger: logger.With().Str("service", "item").Logger(),
	}
}

// CreateItemInput contains the fields of a new catalog item.
type CreateItemInput struct {
	Title       string
	Description string
	Image       string
	LargeImage  string
	Price       int64
}

// Create creates a catalog item owned by the session user.
func (s *ItemService) Create(ctx context.Context, sess *auth.Session, input CreateItemInput) (*domain.Item, error) {
	user, err := sess.User(ctx)
	if err != nil {
		return nil, err
	}

	item := domain.NewItem(user.ID, input.Title, input.Description, input.Image, input.LargeImage, input.Price)
	if err := s.items.Create(ctx, item); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", user.ID).Msg("failed to create item")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", user.ID).Msg("item created")
	return item, nil
}

// Update applies a partial update to an item. The item id and owner are
// never updatable, and there is no ownership or session gate on this
// operation; any caller reaching it may edit any item.
func (s *ItemService) Update(ctx context.Context, itemID int64, upd repository.ItemUpdate) (*domain.Item, error) {
	item, err := s.items.ApplyUpdate(ctx, itemID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.ErrItemNotFound
		}
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to update item")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("item_id", item.ID).Msg("item updated")
	return item, nil
}

// Delete removes an item. The session user must own it or hold ADMIN or
// ITEMDELETE. The gate reads only the owner id; the full row is loaded
// after authorization so it can be returned as it was before deletion.
func (s *ItemService) Delete(ctx context.Context, sess *auth.Session, itemID int64) (*domain.Item, error) {
	user, err := sess.User(ctx)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.items.GetOwnerID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.ErrItemNotFound
		}
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to load item owner for delete")
		return nil, domain.WrapUpstream(err)
	}

	ownsItem := ownerID == user.ID
	if !ownsItem && !user.HasAnyPermission(domain.PermissionAdmin, domain.PermissionItemDelete) {
		s.logger.Debug().
			Int64("item_id", itemID).
			Int64("user_id", user.ID).
			Msg("item delete denied")
		return nil, domain.ErrPermissionDenied
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.ErrItemNotFound
		}
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to load item for delete")
		return nil, domain.WrapUpstream(err)
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.ErrItemNotFound
		}
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to delete item")
		return nil, domain.WrapUpstream(err)
	}

	s.logger.Info().Int64("item_id", itemID).Int64("user_id", user.ID).Msg("item deleted")
	return item, nil
}
