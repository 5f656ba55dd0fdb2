package domain

import "context"

type ListMembersRequest struct {
	GroupID uint64
	ActorID uint64
	Page    int
	Limit   int
}

type ListMembersResponse struct {
	Members []MemberView `json:"members"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
}

type UpdateRoleRequest struct {
	GroupID uint64
	ActorID uint64
	UserID  uint64
	Role    string
}

type RemoveMemberRequest struct {
	GroupID uint64
	ActorID uint64
	UserID  uint64
}

type Service interface {
	ListMembers(ctx context.Context, req ListMembersRequest) (*ListMembersResponse, error)
	UpdateMemberRole(ctx context.Context, req UpdateRoleRequest) (*Member, error)
	RemoveMember(ctx context.Context, req RemoveMemberRequest) error
	// CanPerformAction reports whether a user may perform an action in a
	// group. Non-members can do nothing; the group owner can do
	// everything.
	CanPerformAction(ctx context.Context, groupID, userID uint64, action string) (bool, error)
}
