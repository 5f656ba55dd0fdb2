package email

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/huddle/internal/config"
)

var Module = fx.Module("providers.email",
	fx.Provide(
		NewFromConfig,
		NewMailer,
	),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMTPHost == "" {
		log.Info("smtp not configured, email delivery disabled")
		return &NoOpProvider{}
	}
	return NewSMTP(Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
}
