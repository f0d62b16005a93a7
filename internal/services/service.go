package services

import (
	"errors"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"gorm.io/gorm"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

// lookupErr maps a missing row to notFound and wraps every other failure.
func lookupErr(err error, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

// writeErr maps a unique-index violation to conflict and wraps every other failure.
func writeErr(err error, conflict *apierrors.DomainError, action string) error {
	if conflict != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	var de *apierrors.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
