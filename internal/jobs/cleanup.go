package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/repository"
)

// CleanupJob periodically lifts expired account cooldowns and prunes old log
// entries. Campaigns left RUNNING by a crashed process are not touched here;
// they require operator attention.
type CleanupJob struct {
	accountRepo  repository.AccountRepository
	logRepo      repository.LogEntryRepository
	logRetention time.Duration
	interval     time.Duration
	done         chan struct{}
}

func NewCleanupJob(
	accountRepo repository.AccountRepository,
	logRepo repository.LogEntryRepository,
	logRetention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		accountRepo:  accountRepo,
		logRepo:      logRepo,
		logRetention: logRetention,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.runCleanup(ctx, "expired cooldowns", j.accountRepo.ClearExpiredCooldowns)
	j.runCleanup(ctx, "old log entries", func(ctx context.Context) (int64, error) {
		return j.logRepo.DeleteOlderThan(ctx, time.Now().Add(-j.logRetention))
	})
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
