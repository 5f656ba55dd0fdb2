package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListGroupInvitations(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	invitations, err := s.invitationSvc.GetPending(c.Request.Context(), groupID, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// ListMyInvitations is the caller's invitation inbox, keyed by their
// account email.
func (s *Server) ListMyInvitations(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	entries, err := s.invitationSvc.ListByEmail(c.Request.Context(), user.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": entries})
}

func (s *Server) GetInvitationByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	preview, err := s.invitationSvc.GetByToken(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": preview})
}

func (s *Server) AcceptInvitationByToken(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	token := c.Param("token")
	if token == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invitationSvc.AcceptByToken(c.Request.Context(), token, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

func (s *Server) RejectInvitationByToken(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	token := c.Param("token")
	if token == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invitationSvc.RejectByToken(c.Request.Context(), token, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

func (s *Server) AcceptInvitationByID(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	inv, err := s.invitationSvc.AcceptByID(c.Request.Context(), id, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

func (s *Server) RejectInvitationByID(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	inv, err := s.invitationSvc.RejectByID(c.Request.Context(), id, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

func (s *Server) CancelInvitation(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.invitationSvc.Cancel(c.Request.Context(), id, user.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (s *Server) ResendInvitation(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	inv, err := s.invitationSvc.Resend(c.Request.Context(), id, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

// CleanupInvitations lets an operator trigger the expiry sweep without
// waiting for the scheduler interval.
func (s *Server) CleanupInvitations(c *gin.Context) {
	count, err := s.invitationSvc.CleanupExpired(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}
