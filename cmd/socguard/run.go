package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"socguard/internal/arbiter"
	"socguard/internal/confirm"
	"socguard/internal/engine"
	"socguard/internal/lockout"
	"socguard/internal/logger"
	"socguard/internal/policy"
	"socguard/internal/ratelimit"
	"socguard/pkg/models"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Consume hunt results and govern isolation actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent()
		},
	}
}

func runAgent() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.SocGuard.Logging.Enabled, cfg.SocGuard.Logging.Level, cfg.SocGuard.Logging.File, cfg.SocGuard.Logging.Console); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logger.Infof("socguard starting, actor=%s", cfg.SocGuard.Actor)

	store, err := buildAuditStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lockStore, err := buildLockStore(cfg)
	if err != nil {
		return err
	}
	defer lockStore.Close()

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	exec, err := buildExecutor(cfg)
	if err != nil {
		return err
	}

	source, err := buildHuntSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	guard := lockout.NewGuard(lockStore, store)
	limiter := ratelimit.New(store, guard, notifier, ratelimit.Limits{
		Per5Minutes: cfg.SocGuard.Guardrails.Per5Minutes,
		PerHour:     cfg.SocGuard.Guardrails.PerHour,
		PerDay:      cfg.SocGuard.Guardrails.PerDay,
	})

	eng, err := engine.New(engine.Deps{
		Actor:      cfg.SocGuard.Actor,
		BatchGuard: policy.NewBatchSizeGuard(cfg.SocGuard.Guardrails.BatchSizeMax, cfg.SocGuard.Guardrails.HighThreatCountMax),
		Confidence: policy.NewConfidencePolicy(),
		Allowlist:  policy.NewQueryAllowlist(),
		Limiter:    limiter,
		Guard:      guard,
		Arbiter: arbiter.New(arbiter.Config{
			Threshold: cfg.SocGuard.Guardrails.MassExceptionMin,
			Phrase:    cfg.SocGuard.Guardrails.ConfirmationPhrase,
			Delay:     cfg.SocGuard.Guardrails.ConfirmationDelay,
		}),
		Prompter: confirm.NewInteractive(cfg.SocGuard.Guardrails.ConfirmationPhrase),
		Executor: exec,
		Store:    store,
		Notifier: notifier,
	})
	if err != nil {
		return err
	}

	if cfg.SocGuard.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Infof("Metrics listening on %s", cfg.SocGuard.Metrics.Addr)
			if err := http.ListenAndServe(cfg.SocGuard.Metrics.Addr, mux); err != nil {
				logger.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		result, err := source.Next(ctx)
		if err == io.EOF {
			logger.Infof("Hunt source exhausted")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				logger.Infof("Shutting down")
				return nil
			}
			return fmt.Errorf("read hunt result: %w", err)
		}
		if result == nil {
			if ctx.Err() != nil {
				logger.Infof("Shutting down")
				return nil
			}
			continue
		}

		report, err := eng.ProcessBatch(ctx, result)
		printReport(report)

		switch {
		case err == nil:
		case errors.Is(err, engine.ErrLocked):
			fmt.Fprintln(os.Stderr, "Agent is locked out; run 'socguard unlock' after review to resume.")
			return err
		default:
			var valErr *engine.ValidationError
			var rlErr *engine.RateLimitError
			if errors.As(err, &valErr) || errors.As(err, &rlErr) {
				logger.Warnf("Batch %s not fully processed: %v", report.HuntID, err)
				continue
			}
			return err
		}
	}
}

func printReport(report *models.BatchReport) {
	if report == nil {
		return
	}
	fmt.Printf("batch %s: state=%s isolated=%d failed=%d declined=%d skipped=%d\n",
		report.HuntID, report.State, report.Isolated, report.Failed, report.Declined, report.Skipped)
	if report.Exception != nil && report.Exception.Applies {
		fmt.Printf("  mass isolation exception: %d HIGH/CRITICAL threats, %d devices, approved=%t\n",
			report.Exception.TotalHighCritical, report.Exception.DeviceCount, report.MassApproved)
	}
	if report.RateLimited {
		fmt.Println("  rate limited: remaining threats in this batch were not processed")
	}
}
