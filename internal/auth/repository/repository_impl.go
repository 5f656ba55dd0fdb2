package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/auth/domain"
	"github.com/smallbiznis/huddle/pkg/db"
)

type repo struct {
	db *gorm.DB
}

type sessionRepo struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) (domain.Repository, domain.SessionRepository) {
	return &repo{db: gdb}, &sessionRepo{db: gdb}
}

func (r *repo) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrUserExists
		}
		return db.WrapError("auth.create_user", err)
	}
	return nil
}

func (r *repo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, db.WrapError("auth.find_user_by_email", err)
	}
	return &user, nil
}

func (r *repo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, db.WrapError("auth.find_user_by_id", err)
	}
	return &user, nil
}

func (r *repo) FindByIDs(ctx context.Context, ids []uint64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, db.WrapError("auth.find_users_by_ids", err)
	}
	return users, nil
}

func (r *repo) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return db.WrapError("auth.update_user", err)
	}
	return nil
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return db.WrapError("auth.create_session", err)
	}
	return nil
}

func (r *sessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).Where("session_token_hash = ?", tokenHash).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, db.WrapError("auth.find_session", err)
	}
	return &session, nil
}

func (r *sessionRepo) Revoke(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now().UTC())
	if res.Error != nil {
		return db.WrapError("auth.revoke_session", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepo) TouchLastSeen(ctx context.Context, id uint64) error {
	err := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now().UTC()).Error
	if err != nil {
		return db.WrapError("auth.touch_session", err)
	}
	return nil
}
