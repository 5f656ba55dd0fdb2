package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditrepo "github.com/smallbiznis/huddle/internal/audit/repository"
	auditservice "github.com/smallbiznis/huddle/internal/audit/service"
	authdomain "github.com/smallbiznis/huddle/internal/auth/domain"
	authrepo "github.com/smallbiznis/huddle/internal/auth/repository"
	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/internal/config"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	grouprepo "github.com/smallbiznis/huddle/internal/group/repository"
	"github.com/smallbiznis/huddle/internal/identity"
	"github.com/smallbiznis/huddle/internal/member/domain"
	memberrepo "github.com/smallbiznis/huddle/internal/member/repository"
	memberservice "github.com/smallbiznis/huddle/internal/member/service"
	"github.com/smallbiznis/huddle/internal/migration"
	"github.com/smallbiznis/huddle/internal/role"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	catalog *role.Catalog
	users   authdomain.Repository
	groups  groupdomain.Repository
	members domain.Repository
	svc     domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:member_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	cfg := config.Config{
		Groups: config.GroupConfig{
			DefaultRoles: []string{"owner", "admin", "member"},
			RolePermissions: map[string][]string{
				"owner":  {"*"},
				"admin":  {"manage_members", "invite_members", "view_content"},
				"member": {"view_content"},
			},
		},
	}
	catalog := role.NewCatalog(cfg)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	users, _ := authrepo.New(db)
	groups := grouprepo.New(db)
	members := memberrepo.New(db)
	auditSvc := auditservice.New(auditrepo.New(db), node, clk, log)
	svc := memberservice.New(
		members, groups, catalog,
		identity.NewProvider(users, identity.NewMemoryCache(), log),
		auditSvc, log,
	)

	return &fixture{
		db: db, node: node, clock: clk, catalog: catalog,
		users: users, groups: groups, members: members, svc: svc,
	}
}

func (f *fixture) createUser(t *testing.T, emailAddr, name string) *authdomain.User {
	t.Helper()
	user := &authdomain.User{
		ID:    uint64(f.node.Generate().Int64()),
		Email: emailAddr,
		Name:  name,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// createGroup seeds a group plus its owner row directly at the
// repository layer.
func (f *fixture) createGroup(t *testing.T, owner *authdomain.User) *groupdomain.Group {
	t.Helper()
	group := &groupdomain.Group{
		ID:        uint64(f.node.Generate().Int64()),
		Name:      "Team",
		Slug:      fmt.Sprintf("team-%d", f.node.Generate().Int64()),
		OwnerID:   owner.ID,
		GroupType: "organization",
		Status:    groupdomain.StatusActive,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	ownerRow := &domain.Member{
		ID:          uint64(f.node.Generate().Int64()),
		UserID:      owner.ID,
		Role:        role.Owner,
		Permissions: f.catalog.Permissions(role.Owner),
		JoinedAt:    f.clock.Now(),
	}
	require.NoError(t, f.groups.Create(context.Background(), group, ownerRow))
	return group
}

func (f *fixture) addMember(t *testing.T, group *groupdomain.Group, user *authdomain.User, memberRole string) *domain.Member {
	t.Helper()
	row := &domain.Member{
		ID:          uint64(f.node.Generate().Int64()),
		GroupID:     group.ID,
		UserID:      user.ID,
		Role:        memberRole,
		Permissions: f.catalog.Permissions(memberRole),
		JoinedAt:    f.clock.Now(),
	}
	require.NoError(t, f.members.Create(context.Background(), row))
	return row
}

func TestListMembersEnrichesWithIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner@example.com", "Olive Owner")
	other := f.createUser(t, "other@example.com", "Oscar Other")
	group := f.createGroup(t, owner)
	f.clock.Advance(time.Minute)
	f.addMember(t, group, other, role.Member)

	resp, err := f.svc.ListMembers(ctx, domain.ListMembersRequest{
		GroupID: group.ID, ActorID: owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Members, 2)

	// Rows come back oldest membership first, owner first here.
	first := resp.Members[0]
	assert.Equal(t, role.Owner, first.Role)
	require.NotNil(t, first.User)
	assert.Equal(t, "Olive Owner", first.User.Name)
	assert.Equal(t, "owner@example.com", first.User.Email)
}

func TestListMembersNonMemberGets404Semantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner@example.com", "Owner")
	outsider := f.createUser(t, "out@example.com", "Outsider")
	group := f.createGroup(t, owner)

	_, err := f.svc.ListMembers(ctx, domain.ListMembersRequest{
		GroupID: group.ID, ActorID: outsider.ID,
	})
	assert.ErrorIs(t, err, groupdomain.ErrGroupNotFound)
}

func TestUpdateMemberRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner@example.com", "Owner")
	target := f.createUser(t, "target@example.com", "Target")
	admin := f.createUser(t, "admin@example.com", "Admin")
	group := f.createGroup(t, owner)
	f.addMember(t, group, target, role.Member)
	f.addMember(t, group, admin, role.Admin)

	// Only the owner may change roles, admins included.
	_, err := f.svc.UpdateMemberRole(ctx, domain.UpdateRoleRequest{
		GroupID: group.ID, ActorID: admin.ID, UserID: target.ID, Role: role.Admin,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// The owner role is not assignable here.
	_, err = f.svc.UpdateMemberRole(ctx, domain.UpdateRoleRequest{
		GroupID: group.ID, ActorID: owner.ID, UserID: target.ID, Role: role.Owner,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = f.svc.UpdateMemberRole(ctx, domain.UpdateRoleRequest{
		GroupID: group.ID, ActorID: owner.ID, UserID: target.ID, Role: "superuser",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	// The owner's own row is off limits.
	_, err = f.svc.UpdateMemberRole(ctx, domain.UpdateRoleRequest{
		GroupID: group.ID, ActorID: owner.ID, UserID: owner.ID, Role: role.Admin,
	})
	assert.ErrorIs(t, err, domain.ErrCannotModifyOwner)

	updated, err := f.svc.UpdateMemberRole(ctx, domain.UpdateRoleRequest{
		GroupID: group.ID, ActorID: owner.ID, UserID: target.ID, Role: role.Admin,
	})
	require.NoError(t, err)
	assert.Equal(t, role.Admin, updated.Role)

	// The permission snapshot was rewritten alongside the role.
	reloaded, err := f.members.Find(ctx, group.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, role.HasPermission(reloaded.Permissions, "manage_members"))
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner@example.com", "Owner")
	admin := f.createUser(t, "admin@example.com", "Admin")
	plain := f.createUser(t, "plain@example.com", "Plain")
	leaver := f.createUser(t, "leaver@example.com", "Leaver")
	group := f.createGroup(t, owner)
	f.addMember(t, group, admin, role.Admin)
	f.addMember(t, group, plain, role.Member)
	f.addMember(t, group, leaver, role.Member)

	// The owner cannot be removed, not even by themselves.
	err := f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{
		GroupID: group.ID, ActorID: owner.ID, UserID: owner.ID,
	})
	assert.ErrorIs(t, err, domain.ErrCannotModifyOwner)

	// A plain member cannot remove someone else.
	err = f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{
		GroupID: group.ID, ActorID: plain.ID, UserID: admin.ID,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Anyone may leave on their own.
	require.NoError(t, f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{
		GroupID: group.ID, ActorID: leaver.ID, UserID: leaver.ID,
	}))
	_, err = f.members.Find(ctx, group.ID, leaver.ID)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	// manage_members lets an admin remove a plain member.
	require.NoError(t, f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{
		GroupID: group.ID, ActorID: admin.ID, UserID: plain.ID,
	}))
}

func TestCanPerformAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner@example.com", "Owner")
	admin := f.createUser(t, "admin@example.com", "Admin")
	plain := f.createUser(t, "plain@example.com", "Plain")
	group := f.createGroup(t, owner)
	f.addMember(t, group, admin, role.Admin)
	f.addMember(t, group, plain, role.Member)

	cases := []struct {
		name   string
		userID uint64
		action string
		want   bool
	}{
		{"owner wildcard", owner.ID, "absolutely_anything", true},
		{"admin granted", admin.ID, "manage_members", true},
		{"admin denied", admin.ID, "manage_billing", false},
		{"member granted", plain.ID, "view_content", true},
		{"member denied", plain.ID, "manage_members", false},
		{"non-member", uint64(f.node.Generate().Int64()), "view_content", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.CanPerformAction(ctx, group.ID, tc.userID, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
