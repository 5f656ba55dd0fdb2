package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/invitation/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/pkg/db"
)

type repo struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repo{db: gdb}
}

func (r *repo) Create(ctx context.Context, inv *domain.Invitation, maxPending int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending int64
		err := tx.Model(&domain.Invitation{}).
			Where("group_id = ? AND status = ?", inv.GroupID, domain.StatusPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending >= int64(maxPending) {
			return domain.ErrLimitExceeded
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrLimitExceeded) {
			return err
		}
		return db.WrapError("invitation.create", err)
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, id uint64) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, db.WrapError("invitation.find_by_id", err)
	}
	return &inv, nil
}

func (r *repo) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, db.WrapError("invitation.find_by_token", err)
	}
	return &inv, nil
}

func (r *repo) FindPendingByGroupEmail(ctx context.Context, groupID uint64, email string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND email = ? AND status = ?", groupID, email, domain.StatusPending).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, db.WrapError("invitation.find_pending", err)
	}
	return &inv, nil
}

func (r *repo) ListPendingByGroup(ctx context.Context, groupID uint64) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, domain.StatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, db.WrapError("invitation.list_pending_by_group", err)
	}
	return invitations, nil
}

func (r *repo) ListPendingByEmail(ctx context.Context, email string) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("email = ? AND status = ?", email, domain.StatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, db.WrapError("invitation.list_pending_by_email", err)
	}
	return invitations, nil
}

// TransitionIfPending is the concurrency guard for the invitation state
// machine: the WHERE clause only matches a pending row, so concurrent
// transitions resolve to exactly one winner.
func (r *repo) TransitionIfPending(ctx context.Context, id uint64, to domain.Status, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		return db.WrapError("invitation.transition", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *repo) Accept(ctx context.Context, id uint64, member *memberdomain.Member, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Invitation{}).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Updates(map[string]interface{}{
				"status":      domain.StatusAccepted,
				"accepted_at": at,
				"updated_at":  at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvitationNotFound
		}
		return tx.Create(member).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return err
		}
		if db.IsDuplicateKeyErr(err) {
			return memberdomain.ErrAlreadyMember
		}
		return db.WrapError("invitation.accept", err)
	}
	return nil
}

func (r *repo) Rotate(ctx context.Context, rotation domain.TokenRotation) error {
	res := r.db.WithContext(ctx).Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", rotation.ID, domain.StatusPending).
		Updates(map[string]interface{}{
			"token_hash":   rotation.TokenHash,
			"expires_at":   rotation.ExpiresAt,
			"inviter_name": rotation.InviterName,
			"updated_at":   rotation.UpdatedAt,
		})
	if res.Error != nil {
		return db.WrapError("invitation.rotate", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *repo) ExpireOverdue(ctx context.Context, now time.Time) ([]domain.GroupExpiry, error) {
	var expiries []domain.GroupExpiry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Invitation{}).
			Select("group_id, COUNT(*) AS count").
			Where("status = ? AND expires_at < ?", domain.StatusPending, now).
			Group("group_id").
			Scan(&expiries).Error
		if err != nil {
			return err
		}
		if len(expiries) == 0 {
			return nil
		}
		return tx.Model(&domain.Invitation{}).
			Where("status = ? AND expires_at < ?", domain.StatusPending, now).
			Updates(map[string]interface{}{
				"status":     domain.StatusExpired,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, db.WrapError("invitation.expire_overdue", err)
	}
	return expiries, nil
}
