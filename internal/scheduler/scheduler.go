// Package scheduler runs the periodic invitation expiry sweep.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/huddle/internal/clock"
	invitationdomain "github.com/smallbiznis/huddle/internal/invitation/domain"
)

const (
	defaultInterval = time.Hour
	sweepTimeout    = time.Minute
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	InvitationSvc invitationdomain.Service
	Interval      time.Duration `name:"sweep_interval" optional:"true"`
}

type Scheduler struct {
	log           *zap.Logger
	clock         clock.Clock
	invitationSvc invitationdomain.Service
	interval      time.Duration
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.InvitationSvc == nil {
		return nil, ErrInvalidConfig
	}
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		log:           p.Log.Named("scheduler"),
		clock:         p.Clock,
		invitationSvc: p.InvitationSvc,
		interval:      interval,
	}, nil
}

// RunForever sweeps on the configured interval until ctx is cancelled.
// One sweep runs immediately on start so restarts do not delay expiry
// by a full interval.
func (s *Scheduler) RunForever(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, sweepTimeout)
	defer cancel()

	start := s.clock.Now()
	count, err := s.invitationSvc.CleanupExpired(ctx)
	if err != nil {
		s.log.Error("invitation sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.log.Info("invitation sweep completed",
			zap.Int64("expired", count),
			zap.Duration("took", s.clock.Now().Sub(start)),
		)
	}
}
