package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/smallbiznis/huddle/internal/audit/domain"
	"github.com/smallbiznis/huddle/pkg/db/pagination"
)

// ListAuditLogs is restricted to members who can manage settings,
// which the default catalog grants to owners and admins.
func (s *Server) ListAuditLogs(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	allowed, err := s.memberSvc.CanPerformAction(c.Request.Context(), groupID, user.ID, "manage_settings")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		GroupID:    groupID,
		Action:     c.Query("action"),
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
