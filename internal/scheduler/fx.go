package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/huddle/internal/config"
)

var Module = fx.Module("scheduler",
	fx.Provide(
		fx.Annotate(ProvideInterval, fx.ResultTags(`name:"sweep_interval"`)),
		New,
	),
	fx.Invoke(Run),
)

func ProvideInterval(cfg config.Config, log *zap.Logger) time.Duration {
	interval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		log.Warn("invalid sweep interval, using default",
			zap.String("value", cfg.SweepInterval),
			zap.Error(err),
		)
		return defaultInterval
	}
	return interval
}

func Run(lc fx.Lifecycle, sched *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sched.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
