package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/infrastructure/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SchedulerConfig holds the job intervals
type SchedulerConfig struct {
	Tick            time.Duration
	GateLookahead   time.Duration
	IndefiniteSweep time.Duration // 0 disables the indefinite gate sweep
	NoticeReset     time.Duration
}

// Scheduler drives drawing resolution and gate reconciliation on fixed intervals.
// Each job runs independently; an error on one drawing or gate is logged and
// the remaining items are still processed.
type Scheduler struct {
	engine *EngineContext
	cfg    SchedulerConfig

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewScheduler creates a stopped scheduler
func NewScheduler(engine *EngineContext, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		engine: engine,
		cfg:    cfg,
	}
}

// Start verifies the store is reachable and registers the jobs.
// An unreachable store keeps the scheduler from starting.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	if err := s.checkStore(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)

	// Resolution may overlap a slow previous tick; the check-and-set on
	// winners keeps it exactly-once. Sweeps skip instead of piling up.
	skip := cron.NewChain(cron.SkipIfStillRunning(logger))

	jobs := []struct {
		name     string
		interval time.Duration
		job      cron.Job
	}{
		{observability.JobResolveDrawings, s.cfg.Tick, cron.FuncJob(func() { s.ResolveDueDrawings(jobCtx) })},
		{observability.JobSweepNearExpiry, s.cfg.Tick, skip.Then(cron.FuncJob(func() { s.SweepNearExpiryGates(jobCtx) }))},
		{observability.JobPurgeExpired, s.cfg.Tick, skip.Then(cron.FuncJob(func() { s.PurgeExpiredGates(jobCtx) }))},
		{observability.JobSweepIndefinite, s.cfg.IndefiniteSweep, skip.Then(cron.FuncJob(func() { s.SweepIndefiniteGates(jobCtx) }))},
		{observability.JobResetNotices, s.cfg.NoticeReset, cron.FuncJob(s.ResetNotices)},
	}

	for _, j := range jobs {
		if j.interval <= 0 {
			log.WithField("job", j.name).Info("Scheduler job disabled")
			continue
		}
		if _, err := c.AddJob("@every "+j.interval.String(), j.job); err != nil {
			cancel()
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}

	c.Start()
	s.cron = c
	s.cancel = cancel

	log.WithFields(log.Fields{
		"tick":             s.cfg.Tick,
		"gate_lookahead":   s.cfg.GateLookahead,
		"indefinite_sweep": s.cfg.IndefiniteSweep,
		"notice_reset":     s.cfg.NoticeReset,
	}).Info("Scheduler started")
	return nil
}

// Stop cancels in-flight jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	done := c.Stop()
	cancel()
	<-done.Done()
	log.Info("Scheduler stopped")
}

func (s *Scheduler) checkStore(ctx context.Context) error {
	uow := s.engine.UowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	_, err := uow.DrawingRepository().ListOpen(ctx)
	return err
}

// ResolveDueDrawings rolls every drawing whose deadline has passed.
// Returns how many drawings this call resolved.
func (s *Scheduler) ResolveDueDrawings(ctx context.Context) int {
	metrics := observability.GetMetrics()
	defer metrics.MeasureJob(ctx, observability.JobResolveDrawings)()

	now := s.engine.Now()
	due, err := s.listDueDrawings(ctx, now)
	if err != nil {
		log.WithError(err).Error("Failed to list due drawings")
		metrics.RecordSchedulerItemFailure(ctx, observability.JobResolveDrawings)
		return 0
	}

	resolved := 0
	for _, drawing := range due {
		outcome, err := s.resolveDrawing(ctx, drawing, now)
		if errors.Is(err, entities.ErrAlreadyResolved) {
			log.WithField("drawing_id", drawing.ID).Debug("Drawing resolved elsewhere, skipping")
			continue
		}
		if err != nil {
			log.WithFields(log.Fields{
				"drawing_id": drawing.ID,
				"guild_id":   drawing.GuildID,
				"error":      err,
			}).Error("Failed to resolve drawing")
			metrics.RecordSchedulerItemFailure(ctx, observability.JobResolveDrawings)
			continue
		}

		metrics.RecordDrawingResolved(ctx, string(outcome))
		resolved++
	}

	return resolved
}

func (s *Scheduler) listDueDrawings(ctx context.Context, now time.Time) ([]*entities.Drawing, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("drawing", "GetDue")()

	uow := s.engine.UowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return s.engine.DrawingService(uow).ListDue(ctx, now)
}

func (s *Scheduler) resolveDrawing(ctx context.Context, drawing *entities.Drawing, now time.Time) (entities.DrawingOutcome, error) {
	uow := s.engine.UowFactory.CreateForGuild(drawing.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	resolution, err := s.engine.DrawingService(uow).Resolve(ctx, drawing.ID, now)
	if err != nil {
		return "", err
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit resolution: %w", err)
	}
	return resolution.Result.Outcome, nil
}

// SweepNearExpiryGates reconciles gates that expire within the lookahead window
func (s *Scheduler) SweepNearExpiryGates(ctx context.Context) int {
	defer observability.GetMetrics().MeasureJob(ctx, observability.JobSweepNearExpiry)()

	now := s.engine.Now()
	return s.sweepGates(ctx, observability.JobSweepNearExpiry, func(uow UnitOfWork) ([]*entities.Gate, error) {
		return s.engine.GateService(uow).ListNearExpiry(ctx, now, s.cfg.GateLookahead)
	})
}

// SweepIndefiniteGates reconciles every gate without an expiry
func (s *Scheduler) SweepIndefiniteGates(ctx context.Context) int {
	defer observability.GetMetrics().MeasureJob(ctx, observability.JobSweepIndefinite)()

	return s.sweepGates(ctx, observability.JobSweepIndefinite, func(uow UnitOfWork) ([]*entities.Gate, error) {
		return s.engine.GateService(uow).ListIndefinite(ctx)
	})
}

// sweepGates lists gates in one read transaction, then sweeps each in its own
// unit of work so eviction events are delivered per gate. Returns the evictions.
func (s *Scheduler) sweepGates(ctx context.Context, job string, list func(UnitOfWork) ([]*entities.Gate, error)) int {
	metrics := observability.GetMetrics()

	uow := s.engine.UowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).WithField("job", job).Error("Failed to begin transaction")
		metrics.RecordSchedulerItemFailure(ctx, job)
		return 0
	}
	gates, err := list(uow)
	uow.Rollback()
	if err != nil {
		log.WithError(err).WithField("job", job).Error("Failed to list gates")
		metrics.RecordSchedulerItemFailure(ctx, job)
		return 0
	}

	evicted := 0
	for _, gate := range gates {
		n, err := s.SweepGate(ctx, gate)
		if err != nil {
			log.WithFields(log.Fields{
				"job":     job,
				"gate_id": gate.MessageID,
				"error":   err,
			}).Error("Failed to sweep gate")
			metrics.RecordSchedulerItemFailure(ctx, job)
			continue
		}
		evicted += n
	}
	return evicted
}

// SweepGate runs a full sweep of one gate and returns the eviction count
func (s *Scheduler) SweepGate(ctx context.Context, gate *entities.Gate) (int, error) {
	uow := s.engine.UowFactory.CreateForGuild(gate.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	report, err := s.engine.GateService(uow).Sweep(ctx, gate)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}

	observability.GetMetrics().RecordGateEvictions(ctx, report.Evicted)
	return report.Evicted, nil
}

// PurgeExpiredGates deletes every gate whose expiry has passed
func (s *Scheduler) PurgeExpiredGates(ctx context.Context) int {
	metrics := observability.GetMetrics()
	defer metrics.MeasureJob(ctx, observability.JobPurgeExpired)()

	uow := s.engine.UowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Error("Failed to begin transaction for gate purge")
		metrics.RecordSchedulerItemFailure(ctx, observability.JobPurgeExpired)
		return 0
	}
	defer uow.Rollback()

	purged, err := s.engine.GateService(uow).PurgeExpired(ctx, s.engine.Now())
	if err != nil {
		log.WithError(err).Error("Failed to purge expired gates")
		metrics.RecordSchedulerItemFailure(ctx, observability.JobPurgeExpired)
		return 0
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit gate purge")
		metrics.RecordSchedulerItemFailure(ctx, observability.JobPurgeExpired)
		return 0
	}

	if purged > 0 {
		log.WithField("count", purged).Info("Purged expired gates")
	}
	return purged
}

// ResetNotices clears the eviction notice cache
func (s *Scheduler) ResetNotices() {
	s.engine.Notices.Reset()
	log.Debug("Reset gate eviction notices")
}
