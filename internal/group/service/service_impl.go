package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/internal/config"
	"github.com/smallbiznis/huddle/internal/group/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/internal/role"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxSlugAttempts = 50
)

type service struct {
	groups  domain.Repository
	members memberdomain.Repository
	catalog *role.Catalog
	cfg     config.Config
	node    *snowflake.Node
	clock   clock.Clock
	log     *zap.Logger
}

func New(
	groups domain.Repository,
	members memberdomain.Repository,
	catalog *role.Catalog,
	cfg config.Config,
	node *snowflake.Node,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{
		groups:  groups,
		members: members,
		catalog: catalog,
		cfg:     cfg,
		node:    node,
		clock:   clk,
		log:     log.Named("group.service"),
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateGroupRequest) (*domain.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	count, err := s.groups.CountByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.cfg.Groups.Limits.MaxGroupsPerUser) {
		return nil, domain.ErrLimitExceeded
	}

	groupSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	groupType := strings.TrimSpace(req.GroupType)
	if groupType == "" {
		groupType = s.cfg.Groups.DefaultGroupType
	}
	settings := req.Settings
	if settings == nil {
		settings = datatypes.JSONMap{}
	}

	now := s.clock.Now()
	group := &domain.Group{
		ID:          uint64(s.node.Generate().Int64()),
		Name:        name,
		Slug:        groupSlug,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     req.OwnerID,
		GroupType:   groupType,
		Settings:    settings,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := &memberdomain.Member{
		ID:          uint64(s.node.Generate().Int64()),
		UserID:      req.OwnerID,
		Role:        role.Owner,
		Permissions: s.catalog.Permissions(role.Owner),
		JoinedAt:    now,
	}

	if err := s.groups.Create(ctx, group, owner); err != nil {
		return nil, err
	}

	s.log.Info("group created",
		zap.Uint64("group_id", group.ID),
		zap.Uint64("owner_id", req.OwnerID),
		zap.String("slug", group.Slug),
	)
	return group, nil
}

func (s *service) ListUserGroups(ctx context.Context, req domain.ListGroupsRequest) (*domain.ListGroupsResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	groups, total, err := s.groups.List(ctx, domain.ListFilter{
		UserID:    req.UserID,
		Search:    strings.TrimSpace(req.Search),
		GroupType: strings.TrimSpace(req.GroupType),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ListGroupsResponse{
		Groups: groups,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

func (s *service) GetByID(ctx context.Context, groupID, actorID uint64) (*domain.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.Find(ctx, groupID, actorID); err != nil {
		if errors.Is(err, memberdomain.ErrMemberNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *service) Update(ctx context.Context, req domain.UpdateGroupRequest) (*domain.Group, error) {
	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != req.ActorID {
		return nil, domain.ErrNotOwner
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		group.Name = name
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}
	if req.Settings != nil {
		group.Settings = req.Settings
	}
	group.UpdatedAt = s.clock.Now()

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *service) Delete(ctx context.Context, groupID, actorID uint64) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return domain.ErrNotOwner
	}
	if err := s.groups.SoftDelete(ctx, groupID, s.clock.Now()); err != nil {
		return err
	}
	s.log.Info("group deleted", zap.Uint64("group_id", groupID))
	return nil
}

func (s *service) TransferOwnership(ctx context.Context, req domain.TransferOwnershipRequest) (*domain.Group, error) {
	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != req.ActorID {
		return nil, domain.ErrNotOwner
	}
	if req.NewOwnerID == req.ActorID {
		return group, nil
	}

	target, err := s.members.Find(ctx, req.GroupID, req.NewOwnerID)
	if err != nil {
		return nil, err
	}

	// The outgoing owner takes over the incoming owner's previous role.
	if err := s.groups.TransferOwnership(ctx, domain.OwnershipTransfer{
		GroupID:             req.GroupID,
		OldOwnerID:          req.ActorID,
		NewOwnerID:          req.NewOwnerID,
		OldOwnerRole:        target.Role,
		NewOwnerRole:        role.Owner,
		OldOwnerPermissions: s.catalog.Permissions(target.Role),
		NewOwnerPermissions: s.catalog.Permissions(role.Owner),
	}); err != nil {
		return nil, err
	}

	s.log.Info("group ownership transferred",
		zap.Uint64("group_id", req.GroupID),
		zap.Uint64("from", req.ActorID),
		zap.Uint64("to", req.NewOwnerID),
	)

	group.OwnerID = req.NewOwnerID
	group.UpdatedAt = s.clock.Now()
	return group, nil
}

func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "group"
	}
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		exists, err := s.groups.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", domain.ErrSlugTaken
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
