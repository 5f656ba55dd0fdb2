package domain

import "errors"

var (
	ErrInvitationNotFound = errors.New("invitation_not_found")
	ErrPendingInvitation  = errors.New("pending_invitation_exists")
	ErrInvitationExpired  = errors.New("invitation_expired")
	ErrLimitExceeded      = errors.New("invitation_limit_exceeded")
	ErrGroupFull          = errors.New("member_limit_exceeded")
	ErrEmailMismatch      = errors.New("invitation_email_mismatch")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrForbidden          = errors.New("forbidden")
)
