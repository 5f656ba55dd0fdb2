package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded by the group, member and invitation services.
const (
	ActionGroupCreated         = "group_created"
	ActionGroupUpdated         = "group_updated"
	ActionGroupDeleted         = "group_deleted"
	ActionOwnershipTransferred = "ownership_transferred"
	ActionMemberJoined         = "member_joined"
	ActionMemberRoleChanged    = "member_role_changed"
	ActionMemberRemoved        = "member_removed"
	ActionInvitationCreated    = "invitation_created"
	ActionInvitationAccepted   = "invitation_accepted"
	ActionInvitationRejected   = "invitation_rejected"
	ActionInvitationCancelled  = "invitation_cancelled"
	ActionInvitationResent     = "invitation_resent"
	ActionInvitationsExpired   = "invitations_expired"
)

// Entry is one append-only audit row. Rows are never updated or
// deleted.
type Entry struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	GroupID   uint64            `gorm:"index:idx_audit_group_created;not null" json:"group_id,string"`
	UserID    uint64            `gorm:"index" json:"user_id,string"`
	Action    string            `gorm:"size:64;index;not null" json:"action"`
	Details   datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt time.Time         `gorm:"index:idx_audit_group_created" json:"created_at"`
}

func (Entry) TableName() string { return "group_audit_logs" }
