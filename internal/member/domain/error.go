package domain

import "errors"

var (
	ErrMemberNotFound    = errors.New("member_not_found")
	ErrAlreadyMember     = errors.New("already_member")
	ErrCannotModifyOwner = errors.New("cannot_modify_owner")
	ErrInvalidRole       = errors.New("invalid_role")
	ErrForbidden         = errors.New("forbidden")
)
