package domain

import (
	"context"

	"gorm.io/datatypes"
)

type ListFilter struct {
	GroupID uint64
	Page    int
	Limit   int
}

type Repository interface {
	Create(ctx context.Context, member *Member) error
	Find(ctx context.Context, groupID, userID uint64) (*Member, error)
	List(ctx context.Context, filter ListFilter) ([]Member, int64, error)
	CountByGroup(ctx context.Context, groupID uint64) (int64, error)
	UpdateRole(ctx context.Context, id uint64, role string, permissions datatypes.JSONMap) error
	Delete(ctx context.Context, id uint64) error
}
