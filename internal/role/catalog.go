// Package role maps role names to permission sets.
package role

import (
	"github.com/smallbiznis/huddle/internal/config"
	"go.uber.org/fx"
	"gorm.io/datatypes"
)

const (
	Owner  = "owner"
	Admin  = "admin"
	Member = "member"

	// Wildcard grants every permission; only the owner role carries it.
	Wildcard = "*"
)

// Catalog validates role names against the configured allow-list and derives
// the permission snapshots stored on membership rows. Snapshots are computed
// at write time; catalog changes do not retroactively update existing rows.
type Catalog struct {
	roles       []string
	permissions map[string][]string
}

func NewCatalog(cfg config.Config) *Catalog {
	return &Catalog{
		roles:       cfg.Groups.DefaultRoles,
		permissions: cfg.Groups.RolePermissions,
	}
}

func (c *Catalog) IsValid(role string) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

// Permissions returns the snapshot persisted on a membership row: a map of
// permission name to true for every permission the role grants.
func (c *Catalog) Permissions(role string) datatypes.JSONMap {
	snapshot := datatypes.JSONMap{}
	for _, perm := range c.permissions[role] {
		snapshot[perm] = true
	}
	return snapshot
}

// HasPermission reports whether a stored snapshot grants an action. The
// wildcard entry grants everything.
func HasPermission(snapshot datatypes.JSONMap, action string) bool {
	if snapshot == nil {
		return false
	}
	if granted, ok := snapshot[Wildcard].(bool); ok && granted {
		return true
	}
	granted, ok := snapshot[action].(bool)
	return ok && granted
}

var Module = fx.Module("role",
	fx.Provide(NewCatalog),
)
