package config

import (
	"os"
	"strings"
)

// GroupConfig drives role validation, permission snapshots and the soft
// quotas applied by the group, member and invitation services. Deployments
// rebrand the same core ("Team" vs "Organization" vs "Workspace") by
// overriding these values.
type GroupConfig struct {
	EntityName       string
	DefaultGroupType string
	DefaultRoles     []string
	RolePermissions  map[string][]string
	Limits           GroupLimits
}

type GroupLimits struct {
	MaxGroupsPerUser       int
	MaxMembersPerGroup     int
	MaxInvitationsPerGroup int
	InvitationExpiryDays   int
}

func loadGroupConfig() GroupConfig {
	return GroupConfig{
		EntityName:       getenv("GROUP_ENTITY_NAME", "Team"),
		DefaultGroupType: getenv("GROUP_DEFAULT_TYPE", "organization"),
		DefaultRoles:     getenvList("GROUP_ROLES", []string{"owner", "admin", "member"}),
		RolePermissions: map[string][]string{
			"owner": {"*"},
			"admin": {
				"manage_members",
				"manage_settings",
				"view_content",
				"invite_members",
				"manage_invitations",
			},
			"member": {"view_content", "edit_own_content"},
		},
		Limits: GroupLimits{
			MaxGroupsPerUser:       getenvInt("GROUP_MAX_PER_USER", 10),
			MaxMembersPerGroup:     getenvInt("GROUP_MAX_MEMBERS", 100),
			MaxInvitationsPerGroup: getenvInt("GROUP_MAX_INVITATIONS", 20),
			InvitationExpiryDays:   getenvInt("GROUP_INVITATION_EXPIRY_DAYS", 7),
		},
	}
}

func getenvList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
