package domain

import (
	"time"

	"gorm.io/datatypes"

	"github.com/smallbiznis/huddle/internal/identity"
)

// Member joins a user to a group. Permissions is a snapshot of the
// role's permission set taken when the row was written; catalog changes
// do not retroactively update it.
type Member struct {
	ID          uint64            `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	GroupID     uint64            `gorm:"uniqueIndex:idx_member_group_user;not null" json:"group_id,string"`
	UserID      uint64            `gorm:"uniqueIndex:idx_member_group_user;not null" json:"user_id,string"`
	Role        string            `gorm:"size:32;not null" json:"role"`
	Permissions datatypes.JSONMap `gorm:"type:json" json:"permissions"`
	JoinedAt    time.Time         `gorm:"index;not null" json:"joined_at"`
}

func (Member) TableName() string { return "group_members" }

// MemberView is a membership row enriched with user details for
// listings. User is nil when the identity lookup had no row.
type MemberView struct {
	Member
	User *identity.Details `json:"user,omitempty"`
}
