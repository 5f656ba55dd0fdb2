package invitation

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/huddle/internal/invitation/repository"
	"github.com/smallbiznis/huddle/internal/invitation/service"
	"github.com/smallbiznis/huddle/internal/invitation/token"
	"github.com/smallbiznis/huddle/internal/providers/email"
)

var Module = fx.Module("invitation",
	fx.Provide(
		token.NewCodec,
		repository.New,
		service.New,
		func(mailer *email.Mailer) service.Mailer { return mailer },
	),
)
