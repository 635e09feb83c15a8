package token

import (
	"log"
	"time"

	"wagmi/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// StartPruner schedules a daily cleanup of expired refresh-token lineage
// rows. Expired rows can no longer be rotated anyway; pruning keeps the
// table from growing with every login.
func StartPruner(repo repositories.TokenRepository) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			deleted, err := repo.DeleteExpired(time.Now())
			if err != nil {
				log.Printf("refresh token prune failed: %v", err)
				return
			}
			if deleted > 0 {
				log.Printf("pruned %d expired refresh tokens", deleted)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
