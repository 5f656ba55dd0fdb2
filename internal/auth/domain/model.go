package domain

import "time"

// User is a local account. Display name and avatar are what the
// member and invitation listings surface next to user IDs.
type User struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Email        string  `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Name         string  `gorm:"size:255" json:"name"`
	AvatarURL    string  `gorm:"size:1024" json:"avatar_url,omitempty"`
	PasswordHash *string `gorm:"size:512" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Session is a server side session row. Only the sha256 of the cookie
// token is stored.
type Session struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	UserID           uint64     `gorm:"index;not null" json:"user_id,string"`
	SessionTokenHash string     `gorm:"size:128;uniqueIndex;not null" json:"-"`
	UserAgent        string     `gorm:"size:512" json:"user_agent,omitempty"`
	IPAddress        string     `gorm:"size:64" json:"ip_address,omitempty"`
	ExpiresAt        time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	LastSeenAt       time.Time  `json:"last_seen_at"`
}

func (Session) TableName() string { return "sessions" }
