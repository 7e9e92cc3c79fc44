package services

import (
	"errors"
	"fmt"

	"github.com/antony-akshay/stream-oracle/domain"

	log "github.com/sirupsen/logrus"
)

// maxConflictRetries bounds how often a service re-runs an operation that hit
// an optimistic-concurrency conflict in the store.
const maxConflictRetries = 3

// withConflictRetry re-invokes fn while it fails with domain.ErrConflict.
// Validation errors pass through untouched; they cannot succeed on retry.
func withConflictRetry(operation string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		log.WithFields(log.Fields{
			"operation": operation,
			"attempt":   attempt + 1,
		}).Debug("Retrying after storage conflict")
	}
	return fmt.Errorf("%s: giving up after %d conflict retries: %w", operation, maxConflictRetries, err)
}
