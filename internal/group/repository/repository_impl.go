package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/group/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/pkg/db"
)

type repo struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repo{db: gdb}
}

func (r *repo) Create(ctx context.Context, group *domain.Group, owner *memberdomain.Member) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner.GroupID = group.ID
		return tx.Create(owner).Error
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrSlugTaken
		}
		return db.WrapError("group.create", err)
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, id uint64) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusActive).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, db.WrapError("group.find_by_id", err)
	}
	return &group, nil
}

func (r *repo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("slug = ? AND status = ?", slug, domain.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, db.WrapError("group.slug_exists", err)
	}
	return count > 0, nil
}

func (r *repo) CountByOwner(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("owner_id = ? AND status = ?", ownerID, domain.StatusActive).
		Count(&count).Error
	if err != nil {
		return 0, db.WrapError("group.count_by_owner", err)
	}
	return count, nil
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Group, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("groups.status = ?", domain.StatusActive)

	if filter.UserID != 0 {
		query = query.
			Joins("JOIN group_members ON group_members.group_id = groups.id").
			Where("group_members.user_id = ?", filter.UserID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("groups.name LIKE ? OR groups.slug LIKE ?", like, like)
	}
	if filter.GroupType != "" {
		query = query.Where("groups.group_type = ?", filter.GroupType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, db.WrapError("group.list_count", err)
	}

	var groups []domain.Group
	err := query.
		Order("groups.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&groups).Error
	if err != nil {
		return nil, 0, db.WrapError("group.list", err)
	}
	return groups, total, nil
}

func (r *repo) Update(ctx context.Context, group *domain.Group) error {
	if err := r.db.WithContext(ctx).Save(group).Error; err != nil {
		return db.WrapError("group.update", err)
	}
	return nil
}

func (r *repo) SoftDelete(ctx context.Context, id uint64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("id = ? AND status = ?", id, domain.StatusActive).
		Updates(map[string]interface{}{
			"status":     domain.StatusDeleted,
			"deleted_at": at,
		})
	if res.Error != nil {
		return db.WrapError("group.soft_delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *repo) TransferOwnership(ctx context.Context, t domain.OwnershipTransfer) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Group{}).
			Where("id = ? AND owner_id = ? AND status = ?", t.GroupID, t.OldOwnerID, domain.StatusActive).
			Update("owner_id", t.NewOwnerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrGroupNotFound
		}

		if err := tx.Model(&memberdomain.Member{}).
			Where("group_id = ? AND user_id = ?", t.GroupID, t.NewOwnerID).
			Updates(map[string]interface{}{
				"role":        t.NewOwnerRole,
				"permissions": t.NewOwnerPermissions,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&memberdomain.Member{}).
			Where("group_id = ? AND user_id = ?", t.GroupID, t.OldOwnerID).
			Updates(map[string]interface{}{
				"role":        t.OldOwnerRole,
				"permissions": t.OldOwnerPermissions,
			}).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			return err
		}
		return db.WrapError("group.transfer_ownership", err)
	}
	return nil
}
