package service

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/smallbiznis/huddle/internal/audit/domain"
	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/pkg/db/pagination"
)

// maskedFields are stripped from audit details before persistence.
var maskedFields = []string{"token", "password", "token_hash", "session_token"}

type service struct {
	repo  domain.Repository
	node  *snowflake.Node
	clock clock.Clock
	log   *zap.Logger
}

func New(repo domain.Repository, node *snowflake.Node, clk clock.Clock, log *zap.Logger) domain.Service {
	return &service{repo: repo, node: node, clock: clk, log: log.Named("audit.service")}
}

func (s *service) Record(ctx context.Context, groupID, userID uint64, action string, details datatypes.JSONMap) error {
	entry := &domain.Entry{
		ID:        uint64(s.node.Generate().Int64()),
		GroupID:   groupID,
		UserID:    userID,
		Action:    action,
		Details:   maskDetails(details),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record audit entry",
			zap.String("action", action),
			zap.Uint64("group_id", groupID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	if req.PageSize < 1 {
		req.PageSize = 50
	}
	if req.PageSize > 250 {
		req.PageSize = 250
	}

	entries, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(entries, req.PageSize, func(e *domain.Entry) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        strconv.FormatUint(e.ID, 10),
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
		return token
	})
	if len(entries) > req.PageSize {
		entries = entries[:req.PageSize]
	}

	return &domain.ListResponse{Entries: entries, PageInfo: pageInfo}, nil
}

func maskDetails(details datatypes.JSONMap) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}
	masked := datatypes.JSONMap{}
	for k, v := range details {
		masked[k] = v
	}
	for _, field := range maskedFields {
		if _, ok := masked[field]; ok {
			masked[field] = "[redacted]"
		}
	}
	return masked
}
