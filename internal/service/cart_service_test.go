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

func TestCartService_AddToCart(t *testing.T) {
	user := &domain.User{ID: 1, Permissions: []domain.Permission{domain.PermissionUser}}
	item := &domain.Item{ID: 10, Title: "mug"}

	tests := []struct {
		name    string
		sess    *auth.Session
		setup   func(*mockCartRepository, *mockItemRepository)
		wantErr error
		wantQty int
	}{
		{
			name: "first add inserts quantity 1",
			sess: sessionFor(user),
			setup: func(carts *mockCartRepository, items *mockItemRepository) {
				items.On("GetByID", mock.Anything, int64(10)).Return(item, nil)
				carts.On("AddOne", mock.Anything, int64(1), int64(10)).
					Return(&domain.CartItem{ID: 5, UserID: 1, ItemID: 10, Quantity: 1}, nil)
			},
			wantQty: 1,
		},
		{
			name: "second add merges into quantity 2",
			sess: sessionFor(user),
			setup: func(carts *mockCartRepository, items *mockItemRepository) {
				items.On("GetByID", mock.Anything, int64(10)).Return(item, nil)
				carts.On("AddOne", mock.Anything, int64(1), int64(10)).
					Return(&domain.CartItem{ID: 5, UserID: 1, ItemID: 10, Quantity: 2}, nil)
			},
			wantQty: 2,
		},
		{
			name:    "anonymous session",
			sess:    auth.Anonymous(),
			setup:   func(carts *mockCartRepository, items *mockItemRepository) {},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name: "item does not exist",
			sess: sessionFor(user),
			setup: func(carts *mockCartRepository, items *mockItemRepository) {
				items.On("GetByID", mock.Anything, int64(10)).Return(nil, domain.ErrItemNotFound)
			},
			wantErr: domain.ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := &mockCartRepository{}
			items := &mockItemRepository{}
			svc := NewCartService(carts, items, zerolog.Nop())
			tt.setup(carts, items)

			entry, err := svc.AddToCart(context.Background(), tt.sess, 10)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.wantQty, entry.Quantity)
			}
			mock.AssertExpectationsForObjects(t, carts, items)
		})
	}
}

func TestCartService_Contents(t *testing.T) {
	user := &domain.User{ID: 1}

	t.Run("lists the session user's entries", func(t *testing.T) {
		carts := &mockCartRepository{}
		items := &mockItemRepository{}
		svc := NewCartService(carts, items, zerolog.Nop())

		entries := []*domain.CartItem{
			{ID: 5, UserID: 1, ItemID: 10, Quantity: 2},
			{ID: 6, UserID: 1, ItemID: 11, Quantity: 1},
		}
		carts.On("ListByUser", mock.Anything, int64(1)).Return(entries, nil)

		got, err := svc.Contents(context.Background(), sessionFor(user))
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, int64(10), got[0].ItemID)
		carts.AssertExpectations(t)
	})

	t.Run("anonymous session", func(t *testing.T) {
		carts := &mockCartRepository{}
		items := &mockItemRepository{}
		svc := NewCartService(carts, items, zerolog.Nop())

		_, err := svc.Contents(context.Background(), auth.Anonymous())
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
		carts.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	})
}

func TestCartService_RemoveFromCart(t *testing.T) {
	owner := &domain.User{ID: 1}
	intruder := &domain.User{ID: 2}
	entry := &domain.CartItem{ID: 5, UserID: 1, ItemID: 10, Quantity: 3}

	t.Run("owner removes and gets prior state back", func(t *testing.T) {
		carts := &mockCartRepository{}
		items := &mockItemRepository{}
		svc := NewCartService(carts, items, zerolog.Nop())

		carts.On("GetByID", mock.Anything, int64(5)).Return(entry, nil)
		carts.On("Delete", mock.Anything, int64(5)).Return(nil)

		got, err := svc.RemoveFromCart(context.Background(), sessionFor(owner), 5)
		require.NoError(t, err)
		require.Equal(t, 3, got.Quantity)
		require.Equal(t, int64(10), got.ItemID)
		carts.AssertExpectations(t)
	})

	t.Run("non-owner is rejected and the row survives", func(t *testing.T) {
		carts := &mockCartRepository{}
		items := &mockItemRepository{}
		svc := NewCartService(carts, items, zerolog.Nop())

		carts.On("GetByID", mock.Anything, int64(5)).Return(entry, nil)

		_, err := svc.RemoveFromCart(context.Background(), sessionFor(intruder), 5)
		require.ErrorIs(t, err, domain.ErrOwnershipViolation)
		carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing entry", func(t *testing.T) {
		carts := &mockCartRepository{}
		items := &mockItemRepository{}
		svc := NewCartService(carts, items, zerolog.Nop())

		carts.On("GetByID", mock.Anything, int64(5)).Return(nil, domain.ErrCartItemNotFound)

		_, err := svc.RemoveFromCart(context.Background(), sessionFor(owner), 5)
		require.ErrorIs(t, err, domain.ErrCartItemNotFound)
	})

	t.Run("anonymous session", func(t *testing.T) {
		carts := &mockCartRepository{}
		items := &mockItemRepository{}
		svc := NewCartService(carts, items, zerolog.Nop())

		_, err := svc.RemoveFromCart(context.Background(), auth.Anonymous(), 5)
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
