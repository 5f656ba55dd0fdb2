package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a status permits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusPending
}

type Invitation struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	GroupID uint64 `gorm:"index:idx_invitation_group_email_status;not null" json:"group_id,string"`
	Email   string `gorm:"size:320;index:idx_invitation_group_email_status;not null" json:"email"`
	Role    string `gorm:"size:32;not null" json:"role"`
	// InvitedBy is the inviting user's ID; InviterName is their display
	// name captured at send time, kept so the invitation still reads
	// well after the inviter leaves or is deleted.
	InvitedBy   uint64  `gorm:"not null" json:"invited_by,string"`
	InviterName *string `gorm:"size:255" json:"inviter_name,omitempty"`
	TokenHash   string  `gorm:"size:128;uniqueIndex;not null" json:"-"`
	Status      Status  `gorm:"size:16;index:idx_invitation_group_email_status;default:pending" json:"status"`

	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Invitation) TableName() string { return "group_invitations" }

// GroupSummary is the minimal group projection exposed on public token
// previews and inbox listings.
type GroupSummary struct {
	ID          uint64 `json:"id,string"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Preview is what an unauthenticated holder of a token link sees.
type Preview struct {
	ID          uint64       `json:"id,string"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	InviterName string       `json:"inviter_name"`
	Status      Status       `json:"status"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Group       GroupSummary `json:"group"`
}

// InboxEntry is a pending invitation as seen by its recipient.
type InboxEntry struct {
	Invitation
	Group GroupSummary `json:"group"`
}

// GroupExpiry reports how many invitations a sweep expired per group.
type GroupExpiry struct {
	GroupID uint64
	Count   int64
}
