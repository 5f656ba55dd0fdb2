package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

type Group struct {
	ID          uint64            `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	// Slug uniqueness is enforced per active group: the postgres schema
	// carries a partial unique index, other dialects rely on the
	// service-level check.
	Slug        string            `gorm:"size:255;index;not null" json:"slug"`
	Description string            `gorm:"size:2048" json:"description,omitempty"`
	OwnerID     uint64            `gorm:"index;not null" json:"owner_id,string"`
	GroupType   string            `gorm:"size:64" json:"group_type"`
	Settings    datatypes.JSONMap `gorm:"type:json" json:"settings"`
	Status      Status            `gorm:"size:16;index;default:active" json:"status"`
	DeletedAt   *time.Time        `json:"deleted_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Group) TableName() string { return "groups" }
