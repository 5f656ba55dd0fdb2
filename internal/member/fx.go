package member

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/huddle/internal/member/repository"
	"github.com/smallbiznis/huddle/internal/member/service"
)

var Module = fx.Module("member",
	fx.Provide(
		repository.New,
		service.New,
	),
)
