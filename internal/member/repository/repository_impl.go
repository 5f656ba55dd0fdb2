package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/pkg/db"
)

type repo struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repo{db: gdb}
}

func (r *repo) Create(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrAlreadyMember
		}
		return db.WrapError("member.create", err)
	}
	return nil
}

func (r *repo) Find(ctx context.Context, groupID, userID uint64) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, db.WrapError("member.find", err)
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("group_id = ?", filter.GroupID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, db.WrapError("member.list_count", err)
	}

	var members []domain.Member
	err := query.
		Order("joined_at ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&members).Error
	if err != nil {
		return nil, 0, db.WrapError("member.list", err)
	}
	return members, total, nil
}

func (r *repo) CountByGroup(ctx context.Context, groupID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	if err != nil {
		return 0, db.WrapError("member.count_by_group", err)
	}
	return count, nil
}

func (r *repo) UpdateRole(ctx context.Context, id uint64, role string, permissions datatypes.JSONMap) error {
	res := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":        role,
			"permissions": permissions,
		})
	if res.Error != nil {
		return db.WrapError("member.update_role", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Member{}, "id = ?", id)
	if res.Error != nil {
		return db.WrapError("member.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}
