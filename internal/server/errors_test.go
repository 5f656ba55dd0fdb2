package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authdomain "github.com/smallbiznis/huddle/internal/auth/domain"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	invitationdomain "github.com/smallbiznis/huddle/internal/invitation/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/pkg/db"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"bad credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"expired session", authdomain.ErrSessionExpired, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", memberdomain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"email mismatch", invitationdomain.ErrEmailMismatch, http.StatusForbidden, "forbidden"},
		{"not owner", groupdomain.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{"group missing", groupdomain.ErrGroupNotFound, http.StatusNotFound, "not_found"},
		{"invitation missing", invitationdomain.ErrInvitationNotFound, http.StatusNotFound, "not_found"},
		{"already member", memberdomain.ErrAlreadyMember, http.StatusConflict, "conflict"},
		{"pending duplicate", invitationdomain.ErrPendingInvitation, http.StatusConflict, "conflict"},
		{"slug taken", groupdomain.ErrSlugTaken, http.StatusConflict, "conflict"},
		{"expired invitation", invitationdomain.ErrInvitationExpired, http.StatusBadRequest, "invitation_expired"},
		{"group limit", groupdomain.ErrLimitExceeded, http.StatusBadRequest, "limit_exceeded"},
		{"invitation limit", invitationdomain.ErrLimitExceeded, http.StatusBadRequest, "limit_exceeded"},
		{"group full", invitationdomain.ErrGroupFull, http.StatusBadRequest, "limit_exceeded"},
		{"invalid role", invitationdomain.ErrInvalidRole, http.StatusBadRequest, "validation_error"},
		{"weak password", authdomain.ErrWeakPassword, http.StatusBadRequest, "validation_error"},
		{"owner row immutable", memberdomain.ErrCannotModifyOwner, http.StatusForbidden, "forbidden"},
		{"database failure", db.WrapError("test.op", errors.New("disk on fire")), http.StatusInternalServerError, "database_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestMapErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("accepting invitation: %w", invitationdomain.ErrInvitationExpired)
	status, payload := mapError(wrapped)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invitation_expired", payload.Type)
}

func TestMapErrorValidationDetails(t *testing.T) {
	status, payload := mapError(newValidationError("email", "required", "email is required"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "email", payload.Errors[0].Field)
		assert.Equal(t, "required", payload.Errors[0].Code)
	}
}

func TestErrorHandlingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	engine.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, invitationdomain.ErrPendingInvitation)
	})
	engine.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"conflict"`)

	// A handler that already wrote a body is left alone.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, code := classifyErrorForLog(groupdomain.ErrGroupNotFound)
	assert.Equal(t, "not_found", kind)
	assert.Equal(t, "group_not_found", code)

	kind, code = classifyErrorForLog(nil)
	assert.Empty(t, kind)
	assert.Empty(t, code)
}
