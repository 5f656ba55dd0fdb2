package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	auditdomain "github.com/smallbiznis/huddle/internal/audit/domain"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	"github.com/smallbiznis/huddle/internal/identity"
	"github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/internal/role"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type service struct {
	members  domain.Repository
	groups   groupdomain.Repository
	catalog  *role.Catalog
	identity identity.Provider
	audit    auditdomain.Service
	log      *zap.Logger
}

func New(
	members domain.Repository,
	groups groupdomain.Repository,
	catalog *role.Catalog,
	identityProvider identity.Provider,
	auditSvc auditdomain.Service,
	log *zap.Logger,
) domain.Service {
	return &service{
		members:  members,
		groups:   groups,
		catalog:  catalog,
		identity: identityProvider,
		audit:    auditSvc,
		log:      log.Named("member.service"),
	}
}

func (s *service) ListMembers(ctx context.Context, req domain.ListMembersRequest) (*domain.ListMembersResponse, error) {
	if _, err := s.requireMember(ctx, req.GroupID, req.ActorID); err != nil {
		return nil, err
	}

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	members, total, err := s.members.List(ctx, domain.ListFilter{
		GroupID: req.GroupID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	details, err := s.identity.GetUsersDetails(ctx, userIDs)
	if err != nil {
		// Listings degrade to bare membership rows when the identity
		// lookup fails.
		s.log.Warn("identity enrichment failed", zap.Error(err))
		details = map[uint64]identity.Details{}
	}

	views := make([]domain.MemberView, 0, len(members))
	for _, m := range members {
		view := domain.MemberView{Member: m}
		if d, ok := details[m.UserID]; ok {
			user := d
			view.User = &user
		}
		views = append(views, view)
	}

	return &domain.ListMembersResponse{
		Members: views,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *service) UpdateMemberRole(ctx context.Context, req domain.UpdateRoleRequest) (*domain.Member, error) {
	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != req.ActorID {
		return nil, domain.ErrForbidden
	}
	if !s.catalog.IsValid(req.Role) || req.Role == role.Owner {
		// The owner role is only ever assigned through ownership
		// transfer.
		return nil, domain.ErrInvalidRole
	}
	if req.UserID == group.OwnerID {
		return nil, domain.ErrCannotModifyOwner
	}

	member, err := s.members.Find(ctx, req.GroupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if member.Role == req.Role {
		return member, nil
	}

	oldRole := member.Role
	permissions := s.catalog.Permissions(req.Role)
	if err := s.members.UpdateRole(ctx, member.ID, req.Role, permissions); err != nil {
		return nil, err
	}
	member.Role = req.Role
	member.Permissions = permissions

	if err := s.audit.Record(ctx, req.GroupID, req.ActorID, auditdomain.ActionMemberRoleChanged, datatypes.JSONMap{
		"target_user_id": req.UserID,
		"old_role":       oldRole,
		"new_role":       req.Role,
	}); err != nil {
		s.log.Warn("audit record failed", zap.Error(err))
	}

	return member, nil
}

func (s *service) RemoveMember(ctx context.Context, req domain.RemoveMemberRequest) error {
	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		return err
	}
	if req.UserID == group.OwnerID {
		return domain.ErrCannotModifyOwner
	}

	if req.ActorID != req.UserID {
		allowed, err := s.CanPerformAction(ctx, req.GroupID, req.ActorID, "manage_members")
		if err != nil {
			return err
		}
		if !allowed {
			return domain.ErrForbidden
		}
	}

	member, err := s.members.Find(ctx, req.GroupID, req.UserID)
	if err != nil {
		return err
	}
	if err := s.members.Delete(ctx, member.ID); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, req.GroupID, req.ActorID, auditdomain.ActionMemberRemoved, datatypes.JSONMap{
		"target_user_id": req.UserID,
		"role":           member.Role,
		"self_removal":   req.ActorID == req.UserID,
	}); err != nil {
		s.log.Warn("audit record failed", zap.Error(err))
	}

	return nil
}

func (s *service) CanPerformAction(ctx context.Context, groupID, userID uint64, action string) (bool, error) {
	member, err := s.members.Find(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	if member.Role == role.Owner {
		return true, nil
	}
	return role.HasPermission(member.Permissions, action), nil
}

func (s *service) requireMember(ctx context.Context, groupID, userID uint64) (*domain.Member, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, err
	}
	member, err := s.members.Find(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			// Non-members learn nothing about the group.
			return nil, groupdomain.ErrGroupNotFound
		}
		return nil, err
	}
	return member, nil
}
