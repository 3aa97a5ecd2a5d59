package main

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"caisse-core/internal/adapter/dispatch"
	httpadp "caisse-core/internal/adapter/http"
	"caisse-core/internal/adapter/jobs"
	mw "caisse-core/internal/adapter/middleware"
	"caisse-core/internal/adapter/repository/mysql"
	"caisse-core/internal/config"
	"caisse-core/internal/infrastructure/cache"
	"caisse-core/internal/infrastructure/db"
	caisseuc "caisse-core/internal/usecase/caisse"
	contribuc "caisse-core/internal/usecase/contribution"
	"caisse-core/internal/usecase/fundledger"
	loanuc "caisse-core/internal/usecase/loan"
	memberuc "caisse-core/internal/usecase/member"
	repayuc "caisse-core/internal/usecase/repayment"
	reserveuc "caisse-core/internal/usecase/reserve"
	transferuc "caisse-core/internal/usecase/transfer"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(os.Stderr).With().Str("service", "caisse-core").Logger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	u := mysql.NewGormUoW(gdb)
	disp := dispatch.NewDispatcher(u, log.Logger)

	caisseUC := caisseuc.NewUsecase(u)
	memberUC := memberuc.NewUsecase(u)
	contribUC := contribuc.NewUsecase(u)
	ledgerUC := fundledger.NewUsecase(u)
	loanUC := loanuc.NewUsecase(u)
	repayUC := repayuc.NewUsecase(u)
	reserveUC := reserveuc.NewUsecase(u)
	transferUC := transferuc.NewUsecase(u)

	h := httpadp.NewHandler(u, disp)
	ch := httpadp.NewCaisseHandler(caisseUC, ledgerUC, disp)
	mh := httpadp.NewMemberHandler(memberUC, contribUC, disp)
	lh := httpadp.NewLoanHandler(loanUC, repayUC, disp)
	rh := httpadp.NewReserveHandler(reserveUC, disp)
	th := httpadp.NewTransferHandler(transferUC, disp)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover())
	e.Use(mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	httpadp.Register(e, h, ch, mh, lh, rh, th)

	runner := jobs.NewRunner(u, loanUC, reserveUC, disp, log.Logger)
	if err := runner.Schedule(cfg.OverdueSweepSpec, cfg.AuditPurgeSpec); err != nil {
		log.Fatal().Err(err).Msg("cron schedule failed")
	}
	runner.Start()
	defer runner.Stop()

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
