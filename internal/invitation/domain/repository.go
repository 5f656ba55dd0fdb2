package domain

import (
	"context"
	"time"

	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
)

// TokenRotation carries the fields Resend replaces on a pending row.
type TokenRotation struct {
	ID          uint64
	TokenHash   string
	ExpiresAt   time.Time
	InviterName *string
	UpdatedAt   time.Time
}

type Repository interface {
	// Create inserts the invitation, failing with ErrLimitExceeded when
	// the group already has maxPending pending invitations. Count and
	// insert run in one transaction.
	Create(ctx context.Context, inv *Invitation, maxPending int) error

	FindByID(ctx context.Context, id uint64) (*Invitation, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	FindPendingByGroupEmail(ctx context.Context, groupID uint64, email string) (*Invitation, error)
	ListPendingByGroup(ctx context.Context, groupID uint64) ([]Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]Invitation, error)

	// TransitionIfPending moves a pending invitation to a terminal
	// status. ErrInvitationNotFound when the row is no longer pending.
	TransitionIfPending(ctx context.Context, id uint64, to Status, at time.Time) error

	// Accept atomically transitions the invitation to accepted and
	// inserts the membership row. ErrInvitationNotFound when the row is
	// no longer pending, memberdomain.ErrAlreadyMember on a duplicate
	// membership; either aborts the whole transaction.
	Accept(ctx context.Context, id uint64, member *memberdomain.Member, at time.Time) error

	Rotate(ctx context.Context, rotation TokenRotation) error

	// ExpireOverdue flips every pending invitation past its expiry to
	// expired and reports counts per group. Safe to run concurrently.
	ExpireOverdue(ctx context.Context, now time.Time) ([]GroupExpiry, error)
}
