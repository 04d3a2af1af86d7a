package blast

import (
	"errors"
	"fmt"

	"github.com/hupe1980/blast/index"
)

var (
	// ErrInvalidK is returned when a query is made with k <= 0.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotFound is returned when an inserted id has no vector in the store.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an id is inserted twice.
	ErrDuplicate = errors.New("duplicate id")
)

// translateError unifies typed index errors behind the package sentinels.
// The original underlying error stays reachable via errors.Is/As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var nf *index.ErrVectorNotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var dup *index.ErrDuplicateID
	if errors.As(err, &dup) {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
