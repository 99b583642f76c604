// ABOUTME: Error types for the document collection manager.
// ABOUTME: InvalidSelectionError matches ErrInvalidSelection via errors.Is.
package workspace

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection indicates an index outside the collection that is not NoSelection.
var ErrInvalidSelection = errors.New("invalid selection")

// InvalidSelectionError reports the rejected index and the collection length at the time.
type InvalidSelectionError struct {
	Index int
	Len   int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection %d: collection has %d documents", e.Index, e.Len)
}

func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}
