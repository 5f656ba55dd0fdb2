package domain

import (
	"context"

	"gorm.io/datatypes"
)

type CreateGroupRequest struct {
	OwnerID     uint64
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	GroupType   string            `json:"group_type"`
	Settings    datatypes.JSONMap `json:"settings"`
}

type ListGroupsRequest struct {
	UserID    uint64
	Search    string
	GroupType string
	Page      int
	Limit     int
}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

type UpdateGroupRequest struct {
	GroupID     uint64
	ActorID     uint64
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Settings    datatypes.JSONMap `json:"settings"`
}

type TransferOwnershipRequest struct {
	GroupID    uint64
	ActorID    uint64
	NewOwnerID uint64 `json:"new_owner_id,string" binding:"required"`
}

type Service interface {
	Create(ctx context.Context, req CreateGroupRequest) (*Group, error)
	ListUserGroups(ctx context.Context, req ListGroupsRequest) (*ListGroupsResponse, error)
	// GetByID returns the group when the caller is a member; non-members
	// get ErrGroupNotFound rather than a forbidden hint.
	GetByID(ctx context.Context, groupID, actorID uint64) (*Group, error)
	Update(ctx context.Context, req UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, groupID, actorID uint64) error
	TransferOwnership(ctx context.Context, req TransferOwnershipRequest) (*Group, error)
}
