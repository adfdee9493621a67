package policy

import "fmt"

// BatchCheck is the outcome of a batch-size validation.
type BatchCheck struct {
	Allowed bool
	Warning bool
	Reason  string
}

// BatchSizeGuard validates the size of a hunt result batch before any
// per-threat processing happens.
type BatchSizeGuard struct {
	maxBatch      int
	warnThreshold int
}

// NewBatchSizeGuard creates a batch guard with the given limits.
func NewBatchSizeGuard(maxBatch, warnThreshold int) *BatchSizeGuard {
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if warnThreshold <= 0 {
		warnThreshold = 10
	}
	return &BatchSizeGuard{maxBatch: maxBatch, warnThreshold: warnThreshold}
}

// Validate checks one batch size. Oversized batches are denied; batches
// above the warning threshold pass with a widespread-incident flag.
func (g *BatchSizeGuard) Validate(threatCount int) BatchCheck {
	if threatCount > g.maxBatch {
		return BatchCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("too many threats in single hunt (%d, max %d); narrow search scope", threatCount, g.maxBatch),
		}
	}
	if threatCount > g.warnThreshold {
		return BatchCheck{
			Allowed: true,
			Warning: true,
			Reason:  fmt.Sprintf("high threat count (%d); this may indicate a widespread incident", threatCount),
		}
	}
	return BatchCheck{Allowed: true, Reason: "batch size acceptable"}
}
