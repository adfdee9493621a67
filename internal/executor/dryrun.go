package executor

import (
	"context"

	"socguard/internal/logger"
)

// DryRun resolves every device and isolates nothing. It exists so the
// full governance pipeline can be exercised without touching production
// endpoints.
type DryRun struct{}

// NewDryRun creates a dry-run executor.
func NewDryRun() *DryRun {
	return &DryRun{}
}

// ResolveDeviceID echoes the device name as its id.
func (e *DryRun) ResolveDeviceID(ctx context.Context, deviceName string) (string, error) {
	return "dryrun-" + deviceName, nil
}

// Isolate logs instead of isolating.
func (e *DryRun) Isolate(ctx context.Context, machineID string) error {
	logger.Infof("Dry run: would isolate machine %s", machineID)
	return nil
}
