// File: internal/jobs/counter_offer_expiry.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/swap"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CounterOfferExpiryJob sweeps pending counter-offers whose expiry time
// has passed. Expiry is also enforced at accept time; this job is
// housekeeping so stale rows do not linger as pending.
type CounterOfferExpiryJob struct {
	swapRepo      swap.Repository
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewCounterOfferExpiryJob creates a new CounterOfferExpiryJob.
func NewCounterOfferExpiryJob(
	swapRepo swap.Repository,
	logger *zap.Logger,
	cfg *config.Config,
) *CounterOfferExpiryJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &CounterOfferExpiryJob{
		swapRepo:      swapRepo,
		logger:        logger.Named("CounterOfferExpiryJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *CounterOfferExpiryJob) SetupAndStart() error {
	jobSpec := j.cfg.CounterOfferExpiryJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Counter-offer expiry job schedule not defined (COUNTER_OFFER_EXPIRY_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule counter-offer expiry job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Counter-offer expiry job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *CounterOfferExpiryJob) runJob() {
	j.logger.Info("Starting counter-offer expiry job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	expiredCount, err := j.swapRepo.ExpireCounterOffers(ctx, time.Now())
	if err != nil {
		j.logger.Error("Counter-offer expiry job run failed", zap.Error(err))
	} else {
		j.logger.Info("Counter-offer expiry job run completed", zap.Int64("counter_offers_expired", expiredCount))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *CounterOfferExpiryJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping counter-offer expiry job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Counter-offer expiry job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Counter-offer expiry job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
