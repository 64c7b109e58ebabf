package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RankingRebuilder is implemented by the comment service; the scheduler
// periodically reconciles the Redis activity ranking with PostgreSQL counts.
type RankingRebuilder interface {
	RebuildActivityRanking(ctx context.Context) error
}

type Scheduler struct {
	rebuilder RankingRebuilder
	interval  time.Duration
}

func NewScheduler(rebuilder RankingRebuilder, interval time.Duration) *Scheduler {
	return &Scheduler{
		rebuilder: rebuilder,
		interval:  interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.rebuilder.RebuildActivityRanking(ctx); err != nil {
				logrus.Errorf("Error rebuilding activity ranking: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
