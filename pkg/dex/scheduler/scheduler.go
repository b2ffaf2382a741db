package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pekdex/dexcore/pkg/logging"
	"go.uber.org/zap"
)

const defaultInterval = 10 * time.Second

// Matcher is one matching pass across all pairs.
type Matcher interface {
	MatchAll(ctx context.Context) error
}

// Scheduler drives the matcher at a fixed cadence, independent of request
// traffic. Order creation does not wake it early.
type Scheduler struct {
	matcher  Matcher
	interval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewScheduler(matcher Matcher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		matcher:  matcher,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background loop. The first pass runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one pass; an error never halts the loop for future ticks. Every
// tick gets its own request id so downstream log lines correlate.
func (s *Scheduler) tick(ctx context.Context) {
	ctx = logging.WithRequestID(ctx, logging.NewRequestID())
	if err := s.matcher.MatchAll(ctx); err != nil {
		log, _ := logging.GetLogger(ctx)
		log.Error(ctx, "matching pass failed", zap.Error(err))
	}
}
