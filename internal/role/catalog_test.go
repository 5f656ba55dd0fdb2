package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/smallbiznis/huddle/internal/config"
)

func testCatalog() *Catalog {
	return NewCatalog(config.Config{
		Groups: config.GroupConfig{
			DefaultRoles: []string{"owner", "admin", "member"},
			RolePermissions: map[string][]string{
				"owner":  {"*"},
				"admin":  {"manage_members", "invite_members"},
				"member": {"view_content"},
			},
		},
	})
}

func TestIsValid(t *testing.T) {
	c := testCatalog()
	assert.True(t, c.IsValid(Owner))
	assert.True(t, c.IsValid(Admin))
	assert.True(t, c.IsValid(Member))
	assert.False(t, c.IsValid("superadmin"))
	assert.False(t, c.IsValid(""))
	assert.False(t, c.IsValid("Admin"))
}

func TestPermissionsSnapshot(t *testing.T) {
	c := testCatalog()

	admin := c.Permissions(Admin)
	assert.Equal(t, datatypes.JSONMap{
		"manage_members": true,
		"invite_members": true,
	}, admin)

	// Unknown roles yield an empty snapshot, not nil.
	unknown := c.Permissions("ghost")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestHasPermission(t *testing.T) {
	c := testCatalog()

	assert.True(t, HasPermission(c.Permissions(Owner), "anything"))
	assert.True(t, HasPermission(c.Permissions(Admin), "manage_members"))
	assert.False(t, HasPermission(c.Permissions(Admin), "view_dashboard"))
	assert.False(t, HasPermission(c.Permissions(Member), "manage_members"))
	assert.False(t, HasPermission(nil, "view_content"))

	// Values read back from JSON columns keep their bool typing; a
	// non-bool value never grants.
	assert.False(t, HasPermission(datatypes.JSONMap{"view_content": "yes"}, "view_content"))
}
