package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Schedule runs the pipeline every interval, starting immediately, until ctx
// is done. A run that is still going when the next one is due makes the
// next one wait. Failures are logged and the schedule goes on; done, if not
// nil, receives the outcome of every run.
func (r *Refresher) Schedule(ctx context.Context, every time.Duration, done func(Result, error)) error {
	if every <= 0 {
		return fmt.Errorf("error scheduling refresh: invalid interval %s", every)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(every).Do(func() {
		r.log.Info("scheduled refresh")
		res, err := r.Run(ctx)
		if done != nil {
			done(res, err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling refresh: %w", err)
	}

	scheduler.StartAsync()
	r.log.Info("refresh scheduler started", zap.Duration("every", every))

	<-ctx.Done()

	scheduler.Stop()
	r.log.Info("refresh scheduler stopped")
	return nil
}
