package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"socguard/internal/lockout"
	"socguard/internal/notify"
	"socguard/internal/ratelimit"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show lock state, window usage and audit totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state, err := lockStore.Get(ctx)
	if err != nil {
		return fmt.Errorf("read lock state: %w", err)
	}
	if state.Locked {
		fmt.Printf("lock: ENGAGED since %s (%s)\n", state.Timestamp.Format(time.RFC3339), state.Reason)
	} else {
		fmt.Println("lock: clear")
	}

	guard := lockout.NewGuard(lockStore, store)
	limiter := ratelimit.New(store, guard, notify.NewLogNotifier(), ratelimit.Limits{
		Per5Minutes: cfg.SocGuard.Guardrails.Per5Minutes,
		PerHour:     cfg.SocGuard.Guardrails.PerHour,
		PerDay:      cfg.SocGuard.Guardrails.PerDay,
	})

	count5, count1h, count24h, err := limiter.WindowCounts(ctx, cfg.SocGuard.Actor)
	if err != nil {
		return fmt.Errorf("read window counts: %w", err)
	}
	fmt.Printf("isolations: %d/%d (5m)  %d/%d (1h)  %d/%d (24h)\n",
		count5, cfg.SocGuard.Guardrails.Per5Minutes,
		count1h, cfg.SocGuard.Guardrails.PerHour,
		count24h, cfg.SocGuard.Guardrails.PerDay)

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read audit stats: %w", err)
	}
	fmt.Printf("audit: %d events, %d records\n", stats.TotalEvents, stats.TotalRecords)
	for result, n := range stats.ByResult {
		fmt.Printf("  %s: %d\n", result, n)
	}

	return nil
}
