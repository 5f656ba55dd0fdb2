package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
)

func (s *Server) CreateGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req groupdomain.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OwnerID = user.ID

	group, err := s.groupSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (s *Server) ListGroups(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	resp, err := s.groupSvc.ListUserGroups(c.Request.Context(), groupdomain.ListGroupsRequest{
		UserID:    user.ID,
		Search:    c.Query("search"),
		GroupType: c.Query("type"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	group, err := s.groupSvc.GetByID(c.Request.Context(), groupID, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

func (s *Server) UpdateGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req groupdomain.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.GroupID = groupID
	req.ActorID = user.ID

	group, err := s.groupSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

func (s *Server) DeleteGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.groupSvc.Delete(c.Request.Context(), groupID, user.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) TransferOwnership(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req groupdomain.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.GroupID = groupID
	req.ActorID = user.ID

	group, err := s.groupSvc.TransferOwnership(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid identifier"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}
