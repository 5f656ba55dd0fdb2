package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditrepo "github.com/smallbiznis/huddle/internal/audit/repository"
	auditservice "github.com/smallbiznis/huddle/internal/audit/service"
	authrepo "github.com/smallbiznis/huddle/internal/auth/repository"
	authservice "github.com/smallbiznis/huddle/internal/auth/service"
	"github.com/smallbiznis/huddle/internal/auth/session"
	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/internal/config"
	grouprepo "github.com/smallbiznis/huddle/internal/group/repository"
	groupservice "github.com/smallbiznis/huddle/internal/group/service"
	"github.com/smallbiznis/huddle/internal/identity"
	invitationrepo "github.com/smallbiznis/huddle/internal/invitation/repository"
	invitationservice "github.com/smallbiznis/huddle/internal/invitation/service"
	"github.com/smallbiznis/huddle/internal/invitation/token"
	memberrepo "github.com/smallbiznis/huddle/internal/member/repository"
	memberservice "github.com/smallbiznis/huddle/internal/member/service"
	"github.com/smallbiznis/huddle/internal/migration"
	"github.com/smallbiznis/huddle/internal/providers/email"
	"github.com/smallbiznis/huddle/internal/role"
)

type capturedMail struct {
	invitations []email.InvitationMail
}

func (m *capturedMail) SendInvitation(_ context.Context, mail email.InvitationMail) error {
	m.invitations = append(m.invitations, mail)
	return nil
}

func (m *capturedMail) SendWelcome(context.Context, email.WelcomeMail) error {
	return nil
}

func (m *capturedMail) lastToken(t *testing.T) string {
	t.Helper()
	if len(m.invitations) == 0 {
		t.Fatal("no invitation mail captured")
	}
	url := m.invitations[len(m.invitations)-1].AcceptURL
	return url[strings.LastIndex(url, "/")+1:]
}

func newTestServer(t *testing.T) (*Server, *capturedMail) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(gdb))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	cfg := config.Config{
		AppBaseURL:       "http://huddle.test",
		InvitationSecret: "server-test-secret",
		AdminToken:       "ops-secret",
		Groups: config.GroupConfig{
			DefaultGroupType: "organization",
			DefaultRoles:     []string{"owner", "admin", "member"},
			RolePermissions: map[string][]string{
				"owner":  {"*"},
				"admin":  {"manage_members", "manage_settings", "invite_members", "manage_invitations", "view_content"},
				"member": {"view_content"},
			},
			Limits: config.GroupLimits{
				MaxGroupsPerUser:       10,
				MaxMembersPerGroup:     100,
				MaxInvitationsPerGroup: 20,
				InvitationExpiryDays:   7,
			},
		},
	}

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	catalog := role.NewCatalog(cfg)

	users, sessions := authrepo.New(gdb)
	identityProvider := identity.NewProvider(users, identity.NewMemoryCache(), log)
	auditSvc := auditservice.New(auditrepo.New(gdb), node, clk, log)
	groupRepo := grouprepo.New(gdb)
	memberRepo := memberrepo.New(gdb)
	memberSvc := memberservice.New(memberRepo, groupRepo, catalog, identityProvider, auditSvc, log)
	mailer := &capturedMail{}

	invitationSvc := invitationservice.New(invitationservice.Params{
		Invitations: invitationrepo.New(gdb),
		Groups:      groupRepo,
		Members:     memberRepo,
		MemberSvc:   memberSvc,
		Identity:    identityProvider,
		Audit:       auditSvc,
		Catalog:     catalog,
		Codec:       token.NewCodec(cfg),
		Mailer:      mailer,
		Config:      cfg,
		Node:        node,
		Clock:       clk,
		Log:         log,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           cfg,
		DB:            gdb,
		GenID:         node,
		Sessions:      session.NewManager(cfg),
		AuthSvc:       authservice.New(users, sessions, node, clk, log),
		GroupSvc:      groupservice.New(groupRepo, memberRepo, catalog, cfg, node, clk, log),
		MemberSvc:     memberSvc,
		InvitationSvc: invitationSvc,
		AuditSvc:      auditSvc,
	})
	return srv, mailer
}

// do issues a request carrying the given session cookie and decodes the
// JSON response.
func do(t *testing.T, srv *Server, method, path, sid string, body any) (int, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	}

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func signup(t *testing.T, srv *Server, emailAddr, name string) string {
	t.Helper()

	raw, err := json.Marshal(map[string]string{
		"email":    emailAddr,
		"password": "longenough",
		"name":     name,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie.Value
		}
	}
	t.Fatal("signup did not set a session cookie")
	return ""
}

func TestGroupLifecycleOverHTTP(t *testing.T) {
	srv, mailer := newTestServer(t)

	ownerSID := signup(t, srv, "owner@example.com", "Olive Owner")
	inviteeSID := signup(t, srv, "invitee@example.com", "Nina New")

	// Unauthenticated requests bounce.
	code, body := do(t, srv, http.MethodGet, "/api/groups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["error"].(map[string]any)["type"])

	// Create a group.
	code, body = do(t, srv, http.MethodPost, "/api/groups", ownerSID, map[string]any{
		"name": "Design Team",
	})
	require.Equal(t, http.StatusCreated, code)
	group := body["group"].(map[string]any)
	groupID := group["id"].(string)
	assert.Equal(t, "design-team", group["slug"])

	// Invite the second user.
	code, _ = do(t, srv, http.MethodPost, "/api/groups/"+groupID+"/members", ownerSID, map[string]any{
		"email": "invitee@example.com",
		"role":  "member",
	})
	require.Equal(t, http.StatusCreated, code)

	// The invitee sees it in their inbox.
	code, body = do(t, srv, http.MethodGet, "/api/invitations", inviteeSID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["invitations"].([]any), 1)

	// The emailed link resolves without authentication.
	rawToken := mailer.lastToken(t)
	code, body = do(t, srv, http.MethodGet, "/api/invitations/token/"+rawToken, "", nil)
	require.Equal(t, http.StatusOK, code)
	preview := body["invitation"].(map[string]any)
	assert.Equal(t, "Design Team", preview["group"].(map[string]any)["name"])

	// Accepting requires the invited account.
	code, _ = do(t, srv, http.MethodPost, "/api/invitations/token/"+rawToken+"/accept", ownerSID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, srv, http.MethodPost, "/api/invitations/token/"+rawToken+"/accept", inviteeSID, nil)
	require.Equal(t, http.StatusOK, code)

	// The member list now carries both users with identity details.
	code, body = do(t, srv, http.MethodGet, "/api/groups/"+groupID+"/members", ownerSID, nil)
	require.Equal(t, http.StatusOK, code)
	members := body["members"].([]any)
	require.Len(t, members, 2)

	// A second accept of the same token 404s.
	code, _ = do(t, srv, http.MethodPost, "/api/invitations/token/"+rawToken+"/accept", inviteeSID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Plain members cannot read the audit log.
	code, _ = do(t, srv, http.MethodGet, "/api/groups/"+groupID+"/audit", inviteeSID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = do(t, srv, http.MethodGet, "/api/groups/"+groupID+"/audit", ownerSID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["entries"])
}

func TestGroupVisibilityOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	ownerSID := signup(t, srv, "owner@example.com", "Owner")
	outsiderSID := signup(t, srv, "outsider@example.com", "Outsider")

	code, body := do(t, srv, http.MethodPost, "/api/groups", ownerSID, map[string]any{
		"name": "Private Club",
	})
	require.Equal(t, http.StatusCreated, code)
	groupID := body["group"].(map[string]any)["id"].(string)

	// Non-members get not_found, not forbidden.
	code, body = do(t, srv, http.MethodGet, "/api/groups/"+groupID, outsiderSID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"].(map[string]any)["type"])

	// Deleting as a non-owner is forbidden; the owner succeeds.
	code, _ = do(t, srv, http.MethodDelete, "/api/groups/"+groupID, outsiderSID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, srv, http.MethodDelete, "/api/groups/"+groupID, ownerSID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, srv, http.MethodGet, "/api/groups/"+groupID, ownerSID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	sid := signup(t, srv, "owner@example.com", "Owner")

	// Missing required fields trip binding validation.
	code, body := do(t, srv, http.MethodPost, "/api/groups", sid, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["error"].(map[string]any)["type"])

	// A malformed ID segment is rejected before any lookup.
	code, _ = do(t, srv, http.MethodGet, "/api/groups/not-a-number", sid, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdminCleanupRequiresOperatorToken(t *testing.T) {
	srv, _ := newTestServer(t)

	cleanup := func(token, sid string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/invitations/cleanup", strings.NewReader(""))
		if token != "" {
			req.Header.Set("X-Admin-Token", token)
		}
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
		}
		rec := httptest.NewRecorder()
		srv.Engine().ServeHTTP(rec, req)
		decoded := map[string]any{}
		if rec.Body.Len() > 0 {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
		}
		return rec.Code, decoded
	}

	// A user session alone does not open the operator surface.
	sid := signup(t, srv, "owner@example.com", "Owner")
	code, body := cleanup("", sid)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["error"].(map[string]any)["type"])

	code, _ = cleanup("wrong-secret", sid)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = cleanup("ops-secret", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "expired")
}
