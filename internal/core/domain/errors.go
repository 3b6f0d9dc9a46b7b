package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUntrainedModel means the ML tier was invoked before any Fit.
	// That is a programmer error for the direct caller; the cascade
	// recovers by skipping the tier.
	ErrUntrainedModel = errors.New("ml model not trained")

	// ErrTierTimeout marks an external tier call that exceeded its
	// deadline. Recovered locally as a zero-confidence tier result.
	ErrTierTimeout = errors.New("classifier tier timed out")

	// ErrUnrecognizedLabel marks external-model output that does not map
	// onto the closed intent set.
	ErrUnrecognizedLabel = errors.New("unrecognized intent label")

	// ErrDimensionMismatch marks a query/corpus vector length mismatch.
	// It indicates an embedding-model versioning bug and is surfaced to
	// the caller rather than recovered.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
