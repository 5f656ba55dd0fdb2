package domain

import "errors"

var (
	ErrGroupNotFound = errors.New("group_not_found")
	ErrSlugTaken     = errors.New("slug_already_taken")
	ErrLimitExceeded = errors.New("group_limit_exceeded")
	ErrNotOwner      = errors.New("not_group_owner")
	ErrInvalidName   = errors.New("invalid_group_name")
)
