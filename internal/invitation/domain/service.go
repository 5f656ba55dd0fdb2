package domain

import "context"

type CreateRequest struct {
	GroupID uint64
	ActorID uint64
	Email   string `json:"email" binding:"required"`
	Role    string `json:"role"`
}

type Service interface {
	// Create issues a pending invitation and emails the recipient.
	Create(ctx context.Context, req CreateRequest) (*Invitation, error)

	// GetPending lists a group's pending invitations for managers.
	GetPending(ctx context.Context, groupID, actorID uint64) ([]Invitation, error)

	// GetByToken is the unauthenticated preview behind the email link.
	GetByToken(ctx context.Context, rawToken string) (*Preview, error)

	// ListByEmail is the signed-in user's invitation inbox. Rows whose
	// group has since been deleted are dropped.
	ListByEmail(ctx context.Context, email string) ([]InboxEntry, error)

	AcceptByToken(ctx context.Context, rawToken string, actorID uint64) (*Invitation, error)
	RejectByToken(ctx context.Context, rawToken string, actorID uint64) (*Invitation, error)
	AcceptByID(ctx context.Context, id, actorID uint64) (*Invitation, error)
	RejectByID(ctx context.Context, id, actorID uint64) (*Invitation, error)

	Cancel(ctx context.Context, id, actorID uint64) error
	Resend(ctx context.Context, id, actorID uint64) (*Invitation, error)

	// CleanupExpired sweeps pending invitations past their expiry and
	// returns how many rows it moved.
	CleanupExpired(ctx context.Context) (int64, error)
}
