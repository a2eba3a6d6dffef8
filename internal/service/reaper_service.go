package service

import (
	"context"
	"time"

	"github.com/lshigami/ToeicGenius/config"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/rs/zerolog/log"
)

// ExpiryReaper periodically finalizes test sessions that outlived their
// duration plus the grace period. One failed session never stops the
// sweep, and a sweep failure never stops the loop.
type ExpiryReaper struct {
	resultRepo repository.TestResultRepository
	sessions   TestSessionService
	interval   time.Duration
	grace      time.Duration
}

func NewExpiryReaper(resultRepo repository.TestResultRepository, sessions TestSessionService, cfg *config.Config) *ExpiryReaper {
	return &ExpiryReaper{
		resultRepo: resultRepo,
		sessions:   sessions,
		interval:   cfg.Reaper.Interval,
		grace:      cfg.Reaper.GracePeriod,
	}
}

// Run blocks until ctx is cancelled, sweeping at the configured
// interval. Meant to be launched from an fx lifecycle hook.
func (r *ExpiryReaper) Run(ctx context.Context) {
	log.Info().Dur("interval", r.interval).Dur("grace", r.grace).Msg("Expiry reaper started")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Expiry reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep finalizes every currently expired session.
func (r *ExpiryReaper) Sweep(ctx context.Context) {
	expired, err := r.resultRepo.FindExpiredInProgress(time.Now(), r.grace)
	if err != nil {
		log.Error().Err(err).Msg("Reaper failed to list expired sessions")
		return
	}
	if len(expired) == 0 {
		return
	}
	log.Info().Int("count", len(expired)).Msg("Reaper finalizing expired sessions")

	for _, session := range expired {
		if ctx.Err() != nil {
			return
		}
		if err := r.sessions.AutoSubmitExpired(session.ID); err != nil {
			log.Error().Err(err).Uint("testResultID", session.ID).Msg("Reaper failed to finalize session")
			continue
		}
	}
}
