package domain

import "fmt"

// Permission is a capability tag granting access to a protected operation.
// The set is closed; free-form strings are rejected at parse time so typos
// surface as errors instead of silently denied requests.
type Permission string

const (
	// PermissionUser is the baseline tag granted to every account at signup.
	PermissionUser Permission = "USER"

	// PermissionAdmin grants every elevated operation.
	PermissionAdmin Permission = "ADMIN"

	// PermissionItemCreate allows creating catalog items.
	PermissionItemCreate Permission = "ITEMCREATE"

	// PermissionItemUpdate allows updating catalog items.
	PermissionItemUpdate Permission = "ITEMUPDATE"

	// PermissionItemDelete allows deleting catalog items not owned by the actor.
	PermissionItemDelete Permission = "ITEMDELETE"

	// PermissionPermissionUpdate allows replacing another user's permission set.
	PermissionPermissionUpdate Permission = "PERMISSION_UPDATE"
)

// AllPermissions lists every valid permission tag.
var AllPermissions = []Permission{
	PermissionUser,
	PermissionAdmin,
	PermissionItemCreate,
	PermissionItemUpdate,
	PermissionItemDelete,
	PermissionPermissionUpdate,
}

// ParsePermission validates a raw tag against the closed set.
func ParsePermission(s string) (Permission, error) {
	for _, p := range AllPermissions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
}

// ParsePermissions validates a list of raw tags. The whole list is rejected
// if any tag is unknown.
func ParsePermissions(raw []string) ([]Permission, error) {
	perms := make([]Permission, 0, len(raw))
	for _, s := range raw {
		p, err := ParsePermission(s)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}
