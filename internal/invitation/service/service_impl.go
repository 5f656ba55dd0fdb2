package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	auditdomain "github.com/smallbiznis/huddle/internal/audit/domain"
	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/internal/config"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	"github.com/smallbiznis/huddle/internal/identity"
	"github.com/smallbiznis/huddle/internal/invitation/domain"
	"github.com/smallbiznis/huddle/internal/invitation/token"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/internal/providers/email"
	"github.com/smallbiznis/huddle/internal/role"
)

const fallbackInviterName = "Someone"

// Mailer is the slice of the email facade this service uses; tests
// substitute a recording implementation.
type Mailer interface {
	SendInvitation(ctx context.Context, mail email.InvitationMail) error
	SendWelcome(ctx context.Context, mail email.WelcomeMail) error
}

type Params struct {
	fx.In

	Invitations domain.Repository
	Groups      groupdomain.Repository
	Members     memberdomain.Repository
	MemberSvc   memberdomain.Service
	Identity    identity.Provider
	Audit       auditdomain.Service
	Catalog     *role.Catalog
	Codec       *token.Codec
	Mailer      Mailer
	Config      config.Config
	Node        *snowflake.Node
	Clock       clock.Clock
	Log         *zap.Logger
}

type service struct {
	invitations domain.Repository
	groups      groupdomain.Repository
	members     memberdomain.Repository
	memberSvc   memberdomain.Service
	identity    identity.Provider
	audit       auditdomain.Service
	catalog     *role.Catalog
	codec       *token.Codec
	mailer      Mailer
	cfg         config.Config
	node        *snowflake.Node
	clock       clock.Clock
	log         *zap.Logger
}

func New(p Params) domain.Service {
	return &service{
		invitations: p.Invitations,
		groups:      p.Groups,
		members:     p.Members,
		memberSvc:   p.MemberSvc,
		identity:    p.Identity,
		audit:       p.Audit,
		catalog:     p.Catalog,
		codec:       p.Codec,
		mailer:      p.Mailer,
		cfg:         p.Config,
		node:        p.Node,
		clock:       p.Clock,
		log:         p.Log.Named("invitation.service"),
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Invitation, error) {
	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.memberSvc.CanPerformAction(ctx, req.GroupID, req.ActorID, "invite_members")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	invEmail := normalizeEmail(req.Email)
	if !strings.Contains(invEmail, "@") {
		return nil, domain.ErrInvalidEmail
	}

	invRole := strings.TrimSpace(req.Role)
	if invRole == "" {
		invRole = role.Member
	}
	if !s.catalog.IsValid(invRole) || invRole == role.Owner {
		return nil, domain.ErrInvalidRole
	}

	// A user who already holds a membership must not be invited again.
	if member, err := s.findMemberByEmail(ctx, req.GroupID, invEmail); err != nil {
		return nil, err
	} else if member {
		return nil, memberdomain.ErrAlreadyMember
	}

	if _, err := s.invitations.FindPendingByGroupEmail(ctx, req.GroupID, invEmail); err == nil {
		return nil, domain.ErrPendingInvitation
	} else if !errors.Is(err, domain.ErrInvitationNotFound) {
		return nil, err
	}

	rawToken, err := s.codec.Generate()
	if err != nil {
		return nil, err
	}

	inviterName := s.resolveInviterName(ctx, req.ActorID, nil)
	now := s.clock.Now()
	expiryDays := s.cfg.Groups.Limits.InvitationExpiryDays
	inv := &domain.Invitation{
		ID:          uint64(s.node.Generate().Int64()),
		GroupID:     req.GroupID,
		Email:       invEmail,
		Role:        invRole,
		InvitedBy:   req.ActorID,
		InviterName: optional(inviterName),
		TokenHash:   s.codec.Hash(rawToken),
		Status:      domain.StatusPending,
		ExpiresAt:   now.AddDate(0, 0, expiryDays),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.invitations.Create(ctx, inv, s.cfg.Groups.Limits.MaxInvitationsPerGroup); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, inv.GroupID, req.ActorID, auditdomain.ActionInvitationCreated, datatypes.JSONMap{
		"invitation_id": inv.ID,
		"email":         inv.Email,
		"role":          inv.Role,
	})
	s.sendInvitationMail(ctx, inv, group.Name, inviterName, rawToken)

	return inv, nil
}

func (s *service) GetPending(ctx context.Context, groupID, actorID uint64) ([]domain.Invitation, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, err
	}
	// Non-members learn nothing about the group; forbidden is reserved
	// for members below the manager roles.
	if _, err := s.members.Find(ctx, groupID, actorID); err != nil {
		if errors.Is(err, memberdomain.ErrMemberNotFound) {
			return nil, groupdomain.ErrGroupNotFound
		}
		return nil, err
	}
	allowed, err := s.memberSvc.CanPerformAction(ctx, groupID, actorID, "manage_invitations")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}
	return s.invitations.ListPendingByGroup(ctx, groupID)
}

func (s *service) GetByToken(ctx context.Context, rawToken string) (*domain.Preview, error) {
	inv, err := s.invitations.FindByTokenHash(ctx, s.codec.Hash(rawToken))
	if err != nil {
		return nil, err
	}
	group, err := s.groups.FindByID(ctx, inv.GroupID)
	if err != nil {
		if errors.Is(err, groupdomain.ErrGroupNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}

	// Display-only expiry: the row is not transitioned here.
	status := inv.Status
	if status == domain.StatusPending && s.clock.Now().After(inv.ExpiresAt) {
		status = domain.StatusExpired
	}

	inviterName := fallbackInviterName
	if inv.InviterName != nil && *inv.InviterName != "" {
		inviterName = *inv.InviterName
	}

	return &domain.Preview{
		ID:          inv.ID,
		Email:       inv.Email,
		Role:        inv.Role,
		InviterName: inviterName,
		Status:      status,
		ExpiresAt:   inv.ExpiresAt,
		Group: domain.GroupSummary{
			ID:          group.ID,
			Name:        group.Name,
			Slug:        group.Slug,
			Description: group.Description,
		},
	}, nil
}

func (s *service) ListByEmail(ctx context.Context, emailAddr string) ([]domain.InboxEntry, error) {
	invitations, err := s.invitations.ListPendingByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		return nil, err
	}

	entries := make([]domain.InboxEntry, 0, len(invitations))
	for _, inv := range invitations {
		group, err := s.groups.FindByID(ctx, inv.GroupID)
		if err != nil {
			if errors.Is(err, groupdomain.ErrGroupNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, domain.InboxEntry{
			Invitation: inv,
			Group: domain.GroupSummary{
				ID:          group.ID,
				Name:        group.Name,
				Slug:        group.Slug,
				Description: group.Description,
			},
		})
	}
	return entries, nil
}

func (s *service) AcceptByToken(ctx context.Context, rawToken string, actorID uint64) (*domain.Invitation, error) {
	inv, err := s.invitations.FindByTokenHash(ctx, s.codec.Hash(rawToken))
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, inv, actorID)
}

func (s *service) RejectByToken(ctx context.Context, rawToken string, actorID uint64) (*domain.Invitation, error) {
	inv, err := s.invitations.FindByTokenHash(ctx, s.codec.Hash(rawToken))
	if err != nil {
		return nil, err
	}
	return s.reject(ctx, inv, actorID)
}

func (s *service) AcceptByID(ctx context.Context, id, actorID uint64) (*domain.Invitation, error) {
	inv, err := s.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, inv, actorID)
}

func (s *service) RejectByID(ctx context.Context, id, actorID uint64) (*domain.Invitation, error) {
	inv, err := s.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reject(ctx, inv, actorID)
}

func (s *service) Cancel(ctx context.Context, id, actorID uint64) error {
	inv, err := s.invitations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	allowed, err := s.memberSvc.CanPerformAction(ctx, inv.GroupID, actorID, "manage_invitations")
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrForbidden
	}

	if err := s.invitations.TransitionIfPending(ctx, inv.ID, domain.StatusCancelled, s.clock.Now()); err != nil {
		return err
	}

	s.recordAudit(ctx, inv.GroupID, actorID, auditdomain.ActionInvitationCancelled, datatypes.JSONMap{
		"invitation_id": inv.ID,
		"email":         inv.Email,
	})
	return nil
}

func (s *service) Resend(ctx context.Context, id, actorID uint64) (*domain.Invitation, error) {
	inv, err := s.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed, err := s.memberSvc.CanPerformAction(ctx, inv.GroupID, actorID, "manage_invitations")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}
	if inv.Status != domain.StatusPending {
		return nil, domain.ErrInvitationNotFound
	}

	group, err := s.groups.FindByID(ctx, inv.GroupID)
	if err != nil {
		return nil, err
	}

	rawToken, err := s.codec.Generate()
	if err != nil {
		return nil, err
	}

	inviterName := s.resolveInviterName(ctx, actorID, inv.InviterName)
	now := s.clock.Now()
	rotation := domain.TokenRotation{
		ID:          inv.ID,
		TokenHash:   s.codec.Hash(rawToken),
		ExpiresAt:   now.AddDate(0, 0, s.cfg.Groups.Limits.InvitationExpiryDays),
		InviterName: optional(inviterName),
		UpdatedAt:   now,
	}
	if err := s.invitations.Rotate(ctx, rotation); err != nil {
		return nil, err
	}

	inv.TokenHash = rotation.TokenHash
	inv.ExpiresAt = rotation.ExpiresAt
	inv.InviterName = rotation.InviterName
	inv.UpdatedAt = now

	s.recordAudit(ctx, inv.GroupID, actorID, auditdomain.ActionInvitationResent, datatypes.JSONMap{
		"invitation_id": inv.ID,
		"email":         inv.Email,
	})
	s.sendInvitationMail(ctx, inv, group.Name, inviterName, rawToken)

	return inv, nil
}

func (s *service) CleanupExpired(ctx context.Context) (int64, error) {
	expiries, err := s.invitations.ExpireOverdue(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range expiries {
		total += e.Count
		s.recordAudit(ctx, e.GroupID, 0, auditdomain.ActionInvitationsExpired, datatypes.JSONMap{
			"count": e.Count,
		})
	}
	return total, nil
}

// accept runs the full acceptance path. Expiry is resolved lazily here:
// an overdue pending row is transitioned to expired on first touch.
func (s *service) accept(ctx context.Context, inv *domain.Invitation, actorID uint64) (*domain.Invitation, error) {
	switch inv.Status {
	case domain.StatusPending:
	case domain.StatusExpired:
		return nil, domain.ErrInvitationExpired
	default:
		return nil, domain.ErrInvitationNotFound
	}

	actor, err := s.identity.GetUserDetails(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Email != inv.Email {
		return nil, domain.ErrEmailMismatch
	}

	group, err := s.groups.FindByID(ctx, inv.GroupID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if now.After(inv.ExpiresAt) {
		if err := s.invitations.TransitionIfPending(ctx, inv.ID, domain.StatusExpired, now); err != nil &&
			!errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, err
		}
		return nil, domain.ErrInvitationExpired
	}

	count, err := s.members.CountByGroup(ctx, inv.GroupID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.cfg.Groups.Limits.MaxMembersPerGroup) {
		return nil, domain.ErrGroupFull
	}

	member := &memberdomain.Member{
		ID:          uint64(s.node.Generate().Int64()),
		GroupID:     inv.GroupID,
		UserID:      actorID,
		Role:        inv.Role,
		Permissions: s.catalog.Permissions(inv.Role),
		JoinedAt:    now,
	}
	if err := s.invitations.Accept(ctx, inv.ID, member, now); err != nil {
		return nil, err
	}

	inv.Status = domain.StatusAccepted
	inv.AcceptedAt = &now
	inv.UpdatedAt = now

	s.recordAudit(ctx, inv.GroupID, actorID, auditdomain.ActionInvitationAccepted, datatypes.JSONMap{
		"invitation_id": inv.ID,
		"role":          inv.Role,
	})
	s.recordAudit(ctx, inv.GroupID, actorID, auditdomain.ActionMemberJoined, datatypes.JSONMap{
		"role": inv.Role,
	})
	s.sendWelcomeMail(ctx, inv, group, actor)

	return inv, nil
}

// reject deliberately skips the expiry clock check: an overdue but
// still-pending invitation can be rejected, only the conditional
// transition guards the row.
func (s *service) reject(ctx context.Context, inv *domain.Invitation, actorID uint64) (*domain.Invitation, error) {
	if inv.Status != domain.StatusPending {
		return nil, domain.ErrInvitationNotFound
	}

	actor, err := s.identity.GetUserDetails(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Email != inv.Email {
		return nil, domain.ErrEmailMismatch
	}

	now := s.clock.Now()
	if err := s.invitations.TransitionIfPending(ctx, inv.ID, domain.StatusRejected, now); err != nil {
		return nil, err
	}

	inv.Status = domain.StatusRejected
	inv.UpdatedAt = now

	s.recordAudit(ctx, inv.GroupID, actorID, auditdomain.ActionInvitationRejected, datatypes.JSONMap{
		"invitation_id": inv.ID,
	})
	return inv, nil
}

func (s *service) findMemberByEmail(ctx context.Context, groupID uint64, emailAddr string) (bool, error) {
	details, err := s.identity.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	if details == nil {
		return false, nil
	}
	if _, err := s.members.Find(ctx, groupID, details.ID); err != nil {
		if errors.Is(err, memberdomain.ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolveInviterName prefers the acting user's current display name,
// then the name stored on the invitation, then a neutral fallback.
func (s *service) resolveInviterName(ctx context.Context, actorID uint64, stored *string) string {
	if details, err := s.identity.GetUserDetails(ctx, actorID); err == nil && details != nil {
		if details.Name != "" {
			return details.Name
		}
		if details.Email != "" {
			return details.Email
		}
	}
	if stored != nil && *stored != "" {
		return *stored
	}
	return fallbackInviterName
}

func (s *service) sendInvitationMail(ctx context.Context, inv *domain.Invitation, groupName, inviterName, rawToken string) {
	if inviterName == "" {
		inviterName = fallbackInviterName
	}
	mail := email.InvitationMail{
		Email:       inv.Email,
		GroupName:   groupName,
		InviterName: inviterName,
		Role:        inv.Role,
		AcceptURL:   fmt.Sprintf("%s/invitations/%s", s.cfg.AppBaseURL, rawToken),
		ExpiryDays:  s.cfg.Groups.Limits.InvitationExpiryDays,
	}
	// Delivery failure never fails the operation that queued the mail.
	if err := s.mailer.SendInvitation(ctx, mail); err != nil {
		s.log.Warn("invitation email delivery failed",
			zap.Uint64("invitation_id", inv.ID),
			zap.Error(err),
		)
	}
}

func (s *service) sendWelcomeMail(ctx context.Context, inv *domain.Invitation, group *groupdomain.Group, actor *identity.Details) {
	userName := actor.Name
	if userName == "" {
		userName = actor.Email
	}
	mail := email.WelcomeMail{
		Email:     inv.Email,
		UserName:  userName,
		GroupName: group.Name,
		Role:      inv.Role,
		GroupURL:  fmt.Sprintf("%s/groups/%s", s.cfg.AppBaseURL, group.Slug),
	}
	if err := s.mailer.SendWelcome(ctx, mail); err != nil {
		s.log.Warn("welcome email delivery failed",
			zap.Uint64("invitation_id", inv.ID),
			zap.Error(err),
		)
	}
}

func (s *service) recordAudit(ctx context.Context, groupID, userID uint64, action string, details datatypes.JSONMap) {
	if err := s.audit.Record(ctx, groupID, userID, action, details); err != nil {
		s.log.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}

func optional(value string) *string {
	if value == "" || value == fallbackInviterName {
		return nil
	}
	return &value
}
