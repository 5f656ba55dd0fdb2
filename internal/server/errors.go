package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authdomain "github.com/smallbiznis/huddle/internal/auth/domain"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	invitationdomain "github.com/smallbiznis/huddle/internal/invitation/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
	"github.com/smallbiznis/huddle/pkg/db"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, invitationdomain.ErrInvitationExpired):
		return http.StatusBadRequest, errorPayload{
			Type:    "invitation_expired",
			Message: "invitation has expired",
		}
	case isLimitError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "limit_exceeded",
			Message: err.Error(),
		}
	case isValidationError(err):
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Code: code, Message: "invalid value"},
			},
		}
	case isDatabaseError(err):
		return http.StatusInternalServerError, errorPayload{
			Type:    "database_error",
			Message: "database operation failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, memberdomain.ErrForbidden),
		errors.Is(err, memberdomain.ErrCannotModifyOwner),
		errors.Is(err, invitationdomain.ErrForbidden),
		errors.Is(err, invitationdomain.ErrEmailMismatch),
		errors.Is(err, groupdomain.ErrNotOwner):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, groupdomain.ErrGroupNotFound),
		errors.Is(err, memberdomain.ErrMemberNotFound),
		errors.Is(err, invitationdomain.ErrInvitationNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, memberdomain.ErrAlreadyMember),
		errors.Is(err, invitationdomain.ErrPendingInvitation),
		errors.Is(err, groupdomain.ErrSlugTaken):
		return true
	default:
		return false
	}
}

func isLimitError(err error) bool {
	switch {
	case errors.Is(err, groupdomain.ErrLimitExceeded),
		errors.Is(err, invitationdomain.ErrLimitExceeded),
		errors.Is(err, invitationdomain.ErrGroupFull):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, groupdomain.ErrInvalidName),
		errors.Is(err, memberdomain.ErrInvalidRole),
		errors.Is(err, invitationdomain.ErrInvalidRole),
		errors.Is(err, invitationdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrWeakPassword):
		return true
	default:
		return false
	}
}

func isDatabaseError(err error) bool {
	var opErr *db.OperationError
	return errors.As(err, &opErr)
}

// classifyErrorForLog feeds the request logger: the mapped type plus
// the raw error code.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	return payload.Type, err.Error()
}
