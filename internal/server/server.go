package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/audit"
	auditdomain "github.com/smallbiznis/huddle/internal/audit/domain"
	"github.com/smallbiznis/huddle/internal/auth"
	authdomain "github.com/smallbiznis/huddle/internal/auth/domain"
	"github.com/smallbiznis/huddle/internal/auth/session"
	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/internal/config"
	"github.com/smallbiznis/huddle/internal/group"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	"github.com/smallbiznis/huddle/internal/identity"
	"github.com/smallbiznis/huddle/internal/invitation"
	invitationdomain "github.com/smallbiznis/huddle/internal/invitation/domain"
	"github.com/smallbiznis/huddle/internal/member"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/internal/migration"
	"github.com/smallbiznis/huddle/internal/observability"
	obsmiddleware "github.com/smallbiznis/huddle/internal/observability/logger"
	"github.com/smallbiznis/huddle/internal/providers/email"
	"github.com/smallbiznis/huddle/internal/role"
	"github.com/smallbiznis/huddle/internal/scheduler"
	"github.com/smallbiznis/huddle/pkg/db"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	clock.Module,
	db.Module,
	migration.Module,
	fx.Provide(registerGin),
	fx.Provide(newSnowflakeNode),
	audit.Module,
	auth.Module,
	identity.Module,
	role.Module,
	email.Module,
	group.Module,
	member.Module,
	invitation.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	sessions      *session.Manager
	authSvc       authdomain.Service
	groupSvc      groupdomain.Service
	memberSvc     memberdomain.Service
	invitationSvc invitationdomain.Service
	auditSvc      auditdomain.Service
	scheduler     *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Sessions      *session.Manager
	AuthSvc       authdomain.Service
	GroupSvc      groupdomain.Service
	MemberSvc     memberdomain.Service
	InvitationSvc invitationdomain.Service
	AuditSvc      auditdomain.Service
	Scheduler     *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		sessions:      p.Sessions,
		authSvc:       p.AuthSvc,
		groupSvc:      p.GroupSvc,
		memberSvc:     p.MemberSvc,
		invitationSvc: p.InvitationSvc,
		auditSvc:      p.AuditSvc,
		scheduler:     p.Scheduler,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerPublicRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Groups --------
	api.GET("/groups", s.ListGroups)
	api.POST("/groups", s.CreateGroup)
	api.GET("/groups/:id", s.GetGroup)
	api.PATCH("/groups/:id", s.UpdateGroup)
	api.DELETE("/groups/:id", s.DeleteGroup)
	api.POST("/groups/:id/transfer", s.TransferOwnership)

	// -------- Members --------
	api.GET("/groups/:id/members", s.ListMembers)
	api.POST("/groups/:id/members", s.InviteMember)
	api.PATCH("/groups/:id/members/:userId", s.UpdateMemberRole)
	api.DELETE("/groups/:id/members/:userId", s.RemoveMember)

	// -------- Invitations --------
	api.GET("/groups/:id/invitations", s.ListGroupInvitations)
	api.GET("/invitations", s.ListMyInvitations)
	api.DELETE("/invitations/:id", s.CancelInvitation)
	api.POST("/invitations/:id/resend", s.ResendInvitation)
	api.POST("/invitations/:id/accept", s.AcceptInvitationByID)
	api.POST("/invitations/:id/reject", s.RejectInvitationByID)
	api.POST("/invitations/token/:token/accept", s.AcceptInvitationByToken)
	api.POST("/invitations/token/:token/reject", s.RejectInvitationByToken)

	// -------- Audit --------
	api.GET("/groups/:id/audit", s.ListAuditLogs)
}

// registerPublicRoutes serves the unauthenticated invitation preview
// behind the emailed link.
func (s *Server) registerPublicRoutes() {
	s.engine.GET("/api/invitations/token/:token", s.GetInvitationByToken)
}

// registerAdminRoutes mounts operator endpoints. They authenticate with
// the shared admin token rather than a user session.
func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AdminRequired())

	admin.POST("/invitations/cleanup", s.CleanupInvitations)
}
