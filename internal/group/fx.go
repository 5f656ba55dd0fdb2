package group

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/huddle/internal/group/repository"
	"github.com/smallbiznis/huddle/internal/group/service"
)

var Module = fx.Module("group",
	fx.Provide(
		repository.New,
		service.New,
	),
)
