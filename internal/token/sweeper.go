package token

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jsabonet/milagre-car-site/internal/logger"
)

// Sweeper periodically deletes expired tokens via Manager.SweepExpired.
// Entirely optional: without it, expired tokens linger until the next
// login for the same principal evicts them.
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
}

func NewSweeper(manager *Manager, interval time.Duration) (*Sweeper, error) {
	if interval < time.Minute {
		return nil, fmt.Errorf("token: sweep interval must be at least one minute")
	}

	s := &Sweeper{
		cron:    cron.New(),
		manager: manager,
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.sweep)
	if err != nil {
		return nil, fmt.Errorf("token: failed to schedule sweep: %w", err)
	}

	return s, nil
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := s.manager.SweepExpired(ctx)
	if err != nil {
		logger.Error("token sweep failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if swept > 0 {
		logger.Info("token sweep completed", map[string]any{
			"swept": swept,
		})
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}
