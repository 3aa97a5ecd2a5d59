package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"caisse-core/internal/adapter/dispatch"
	"caisse-core/internal/domain/audit"
	"caisse-core/internal/domain/uow"
	loanuc "caisse-core/internal/usecase/loan"
	reserveuc "caisse-core/internal/usecase/reserve"
)

// Runner owns the recurring background jobs: the nightly overdue sweep, the
// reserve aggregate refresh and the audit retention purge.
type Runner struct {
	cron    *cron.Cron
	uow     uow.UnitOfWork
	loans   *loanuc.Usecase
	reserve *reserveuc.Usecase
	disp    *dispatch.Dispatcher
	log     zerolog.Logger
}

func NewRunner(u uow.UnitOfWork, loans *loanuc.Usecase, reserve *reserveuc.Usecase, disp *dispatch.Dispatcher, log zerolog.Logger) *Runner {
	return &Runner{
		cron:    cron.New(),
		uow:     u,
		loans:   loans,
		reserve: reserve,
		disp:    disp,
		log:     log,
	}
}

// Schedule registers the jobs. Empty specs disable the matching job.
func (r *Runner) Schedule(overdueSpec, purgeSpec string) error {
	if overdueSpec != "" {
		if _, err := r.cron.AddFunc(overdueSpec, r.sweepOverdue); err != nil {
			return err
		}
	}
	if purgeSpec != "" {
		if _, err := r.cron.AddFunc(purgeSpec, r.purgeAudit); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) Start() { r.cron.Start() }

func (r *Runner) Stop() context.Context { return r.cron.Stop() }

func (r *Runner) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	evs, err := r.loans.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		r.log.Error().Err(err).Msg("overdue sweep failed")
		return
	}
	r.disp.Dispatch(ctx, evs)

	// Keeping the cached aggregate fresh off the hot path.
	if _, err := r.reserve.Overview(ctx); err != nil {
		r.log.Error().Err(err).Msg("reserve refresh failed")
	}
	r.log.Info().Int("events", len(evs)).Msg("overdue sweep done")
}

func (r *Runner) purgeAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -audit.RetentionDays)
	var purged int64
	err := r.uow.WithinTx(ctx, func(repos uow.Repos) error {
		var err error
		purged, err = repos.Audits.DeleteOlderThan(ctx, cutoff)
		return err
	})
	if err != nil {
		r.log.Error().Err(err).Msg("audit purge failed")
		return
	}
	r.log.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("audit purge done")
}
