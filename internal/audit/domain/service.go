package domain

import (
	"context"

	"gorm.io/datatypes"

	"github.com/smallbiznis/huddle/pkg/db/pagination"
)

type ListRequest struct {
	GroupID uint64
	Action  string
	pagination.Pagination
}

type ListResponse struct {
	Entries  []*Entry             `json:"entries"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, req ListRequest) ([]*Entry, error)
}

type Service interface {
	// Record appends an audit entry. Call sites log the returned error
	// and continue: auditing never blocks the operation being audited.
	Record(ctx context.Context, groupID, userID uint64, action string, details datatypes.JSONMap) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}
