package auth

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/huddle/internal/auth/repository"
	"github.com/smallbiznis/huddle/internal/auth/service"
	"github.com/smallbiznis/huddle/internal/auth/session"
)

var Module = fx.Module("auth",
	fx.Provide(
		repository.New,
		service.New,
		session.NewManager,
	),
)
