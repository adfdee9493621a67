// Package confirm abstracts the human confirmation steps so the engine's
// control flow is decoupled from terminal I/O. The interactive prompter
// blocks on stdin; the scripted prompter returns injected decisions for
// tests and unattended runs.
package confirm

import (
	"context"

	"socguard/pkg/models"
)

// Prompter supplies human decisions at the engine's confirmation points.
type Prompter interface {
	// PromptMassIsolation displays the mass-isolation summary and
	// returns the operator's raw input. The caller decides what the
	// input means; the mandatory pre-confirmation delay is enforced by
	// the caller, not here.
	PromptMassIsolation(ctx context.Context, exc models.MassException) (string, error)

	// ConfirmIsolation asks whether to isolate one device for one
	// threat.
	ConfirmIsolation(ctx context.Context, device string, threat models.Threat) (bool, error)
}
