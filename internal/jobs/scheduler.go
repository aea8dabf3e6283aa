package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const cleanupStream = "media:cleanup"

// Scheduler periodically enqueues orphan-media sweep tasks. Uploads retracted
// inline after a failed submission can still leak when the process dies
// mid-compensation; the sweep worker reconciles buckets against the database.
type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.enqueueOrphanSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting up to five seconds for a running job.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueOrphanSweep() {
	if err := s.enqueueTask(map[string]any{
		"type": "orphan_sweep",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue orphan sweep failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: cleanupStream,
		Values: payload,
	}).Result()
	return err
}
