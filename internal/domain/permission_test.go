package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	for _, p := range AllPermissions {
		got, err := ParsePermission(string(p))
		require.NoError(t, err)
		require.Equal(t, p, got)
	}

	_, err := ParsePermission("SUPERUSER")
	require.ErrorIs(t, err, ErrUnknownPermission)

	// The set is closed and case-sensitive.
	_, err = ParsePermission("admin")
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestParsePermissions_RejectsWholeList(t *testing.T) {
	_, err := ParsePermissions([]string{"USER", "ADMIN", "bogus"})
	require.ErrorIs(t, err, ErrUnknownPermission)

	perms, err := ParsePermissions([]string{"USER", "ITEMDELETE"})
	require.NoError(t, err)
	require.Equal(t, []Permission{PermissionUser, PermissionItemDelete}, perms)
}

func TestUser_HasAnyPermission(t *testing.T) {
	tests := []struct {
		name     string
		held     []Permission
		required []Permission
		want     bool
	}{
		{"single match", []Permission{PermissionUser}, []Permission{PermissionUser}, true},
		{"intersection non-empty", []Permission{PermissionUser, PermissionItemDelete}, []Permission{PermissionAdmin, PermissionItemDelete}, true},
		{"no overlap", []Permission{PermissionUser}, []Permission{PermissionAdmin, PermissionPermissionUpdate}, false},
		{"empty held", nil, []Permission{PermissionUser}, false},
		{"empty required", []Permission{PermissionAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Permissions: tt.held}
			require.Equal(t, tt.want, u.HasAnyPermission(tt.required...))
		})
	}
}

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser("Ada", "  Ada@Example.COM ", "hash")

	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, []Permission{PermissionUser}, u.Permissions)
	require.Nil(t, u.ResetToken)
	require.Nil(t, u.ResetTokenExpiry)
}

func TestUser_ResetTokenFieldsMoveTogether(t *testing.T) {
	u := NewUser("Ada", "a@b.com", "hash")

	expiry := u.CreatedAt.Add(time.Hour)
	u.SetResetToken("tok", expiry)
	require.NotNil(t, u.ResetToken)
	require.NotNil(t, u.ResetTokenExpiry)

	u.ClearResetToken()
	require.Nil(t, u.ResetToken)
	require.Nil(t, u.ResetTokenExpiry)
}
