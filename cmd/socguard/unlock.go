package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"socguard/pkg/models"
)

func newUnlockCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Clear an engaged lockout after human review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnlock(reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the lockout is safe to clear (required)")
	cmd.MarkFlagRequired("reason")
	return cmd
}

// runUnlock is the only path that clears the lockout. The agent itself
// never unlocks; a human states why and the clearance is audited.
func runUnlock(reason string) error {
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
	if !state.Locked {
		fmt.Println("lock is not engaged; nothing to clear")
		return nil
	}

	if err := lockStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear lock: %w", err)
	}

	if _, err := store.AppendRecord(ctx, &models.AuditRecord{
		Timestamp:  time.Now().UTC(),
		ActionType: models.AuditAgentUnlock,
		Actor:      cfg.SocGuard.Actor,
		Success:    true,
		Details: map[string]string{
			"reason":         reason,
			"lockout_reason": state.Reason,
			"locked_at":      state.Timestamp.Format(time.RFC3339),
		},
	}); err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}

	fmt.Printf("lock cleared (was engaged since %s: %s)\n", state.Timestamp.Format(time.RFC3339), state.Reason)
	return nil
}
