// Package executor performs the actual network isolation calls against
// the endpoint-protection API. The governance engine only ever reaches
// devices through this interface.
package executor

import (
	"context"
	"errors"
)

// ErrDeviceNotFound reports that no device matched the given name.
var ErrDeviceNotFound = errors.New("device not found")

// ActionExecutor resolves device names and isolates machines.
type ActionExecutor interface {
	// ResolveDeviceID maps a device name to a machine id, returning
	// ErrDeviceNotFound when the name is unknown.
	ResolveDeviceID(ctx context.Context, deviceName string) (string, error)

	// Isolate quarantines one machine from the network.
	Isolate(ctx context.Context, machineID string) error
}
