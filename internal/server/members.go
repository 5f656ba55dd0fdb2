package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	invitationdomain "github.com/smallbiznis/huddle/internal/invitation/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
)

func (s *Server) ListMembers(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := s.memberSvc.ListMembers(c.Request.Context(), memberdomain.ListMembersRequest{
		GroupID: groupID,
		ActorID: user.ID,
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InviteMember is the "add member" entry point: members join through
// the invitation flow, never by direct insertion.
func (s *Server) InviteMember(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req invitationdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.GroupID = groupID
	req.ActorID = user.ID

	inv, err := s.invitationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": inv})
}

func (s *Server) UpdateMemberRole(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, err := s.memberSvc.UpdateMemberRole(c.Request.Context(), memberdomain.UpdateRoleRequest{
		GroupID: groupID,
		ActorID: user.ID,
		UserID:  userID,
		Role:    body.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

func (s *Server) RemoveMember(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	err := s.memberSvc.RemoveMember(c.Request.Context(), memberdomain.RemoveMemberRequest{
		GroupID: groupID,
		ActorID: user.ID,
		UserID:  userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
