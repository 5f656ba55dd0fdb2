package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"

	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
)

type ListFilter struct {
	// UserID restricts results to groups the user is a member of.
	UserID    uint64
	Search    string
	GroupType string
	Page      int
	Limit     int
}

// OwnershipTransfer carries the row updates applied atomically when a
// group changes hands.
type OwnershipTransfer struct {
	GroupID             uint64
	OldOwnerID          uint64
	NewOwnerID          uint64
	OldOwnerRole        string
	NewOwnerRole        string
	OldOwnerPermissions datatypes.JSONMap
	NewOwnerPermissions datatypes.JSONMap
}

type Repository interface {
	// Create persists the group and its owner membership in one
	// transaction.
	Create(ctx context.Context, group *Group, owner *memberdomain.Member) error
	FindByID(ctx context.Context, id uint64) (*Group, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// CountByOwner counts active groups owned by the user; deleted
	// groups and plain memberships do not count.
	CountByOwner(ctx context.Context, ownerID uint64) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]Group, int64, error)
	Update(ctx context.Context, group *Group) error
	SoftDelete(ctx context.Context, id uint64, at time.Time) error
	TransferOwnership(ctx context.Context, transfer OwnershipTransfer) error
}
