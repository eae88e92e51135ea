package service

import (
	"context"
	"fmt"
	"time"

	"storefront-merchandising-service/internal/countdown"
	"storefront-merchandising-service/internal/domain"
)

// WatchCountdown streams countdown snapshots of the active campaign to emit until ctx is done.
// The active campaign is re-read every refresh interval; when it changes the running countdown
// is cancelled and replaced, so exactly one countdown emits at a time. emit must not block.
func (s *Service) WatchCountdown(ctx context.Context, emit func(countdown.Snapshot)) error {
	timer := countdown.NewTimer(s.clock, s.tick, countdown.WithTickerFactory(s.newTicker))
	defer timer.Stop()

	refresh := s.newTicker(s.refresh)
	defer refresh.Stop()

	var current watchedCampaign
	started := false
	for {
		campaign, err := s.activeCampaign(ctx, s.clock.Now())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("service: WatchCountdown failed: %w", err)
		}
		next := watched(campaign)
		if !started || next != current {
			if started {
				s.logger.Printf("INFO: countdown switched from campaign %d to %d", current.id, next.id)
			}
			timer.Start(ctx, campaign, emit)
			current, started = next, true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-refresh.C():
		}
	}
}

// watchedCampaign identifies a campaign window; an edited end date counts as a change.
type watchedCampaign struct {
	id     int64
	endsAt time.Time
}

func watched(c *domain.Campaign) watchedCampaign {
	if c == nil {
		return watchedCampaign{}
	}
	return watchedCampaign{id: c.ID, endsAt: c.EndsAt.UTC()}
}
