package repository

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/audit/domain"
	"github.com/smallbiznis/huddle/pkg/db"
	"github.com/smallbiznis/huddle/pkg/db/pagination"
)

type repo struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repo{db: gdb}
}

func (r *repo) Create(ctx context.Context, entry *domain.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return db.WrapError("audit.create", err)
	}
	return nil
}

// List returns up to PageSize+1 rows, newest first. The extra row lets
// the service compute has_more without a count query.
func (r *repo) List(ctx context.Context, req domain.ListRequest) ([]*domain.Entry, error) {
	query := r.db.WithContext(ctx).Model(&domain.Entry{}).
		Where("group_id = ?", req.GroupID)

	if req.Action != "" {
		query = query.Where("action = ?", req.Action)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err == nil && cursor.ID != "" {
			if id, perr := strconv.ParseUint(cursor.ID, 10, 64); perr == nil {
				query = query.Where("id < ?", id)
			}
		}
	}

	var entries []*domain.Entry
	err := query.
		Order("id DESC").
		Limit(req.PageSize + 1).
		Find(&entries).Error
	if err != nil {
		return nil, db.WrapError("audit.list", err)
	}
	return entries, nil
}
