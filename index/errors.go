package index

import (
	"errors"
	"fmt"

	"github.com/viant/fastmks/dataset"
)

var (
	// ErrInvalidArgument is returned for an unusable k, an empty reference
	// set or conflicting options.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDimensionMismatch is returned when query and reference points have
	// different dimensions.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ValidateReferences checks that a reference set can be indexed.
func ValidateReferences(refs dataset.Dataset) error {
	if refs == nil || refs.Len() == 0 {
		return fmt.Errorf("%w: empty reference set", ErrInvalidArgument)
	}
	return nil
}

// ValidateSearch checks search arguments before any traversal begins.
func ValidateSearch(refs, queries dataset.Dataset, k int) error {
	if err := ValidateReferences(refs); err != nil {
		return err
	}
	if queries == nil {
		return fmt.Errorf("%w: nil query set", ErrInvalidArgument)
	}
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if k > refs.Len() {
		return fmt.Errorf("%w: k=%d exceeds reference set size %d", ErrInvalidArgument, k, refs.Len())
	}
	if queries.Len() > 0 && queries.Dim() != refs.Dim() {
		return fmt.Errorf("%w: query dim %d != reference dim %d", ErrDimensionMismatch, queries.Dim(), refs.Dim())
	}
	return nil
}
