package audit

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/huddle/internal/audit/repository"
	"github.com/smallbiznis/huddle/internal/audit/service"
)

var Module = fx.Module("audit",
	fx.Provide(
		repository.New,
		service.New,
	),
)
