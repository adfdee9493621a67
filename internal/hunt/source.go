// Package hunt ingests hunt results from the upstream hunt engine. The
// governance engine treats each result as one batch; intake never
// reorders threats within a result.
package hunt

import (
	"context"

	"socguard/pkg/models"
)

// Source yields hunt results one at a time. Next returns (nil, nil)
// when no result is currently available; io.EOF when the source is
// exhausted for good.
type Source interface {
	Next(ctx context.Context) (*models.HuntResult, error)
	Close() error
}
