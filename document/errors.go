// ABOUTME: Error types for the blob codec: malformed persisted records and unreadable content.
// ABOUTME: Typed errors carry context and match their sentinels through errors.Is.
package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRecord indicates persisted data that cannot be turned back into a document.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrContentRead indicates the text of a live document could not be extracted.
	ErrContentRead = errors.New("content read failed")
)

// MalformedRecordError describes a record that is missing required fields or
// a payload that is not valid JSON at all. Index is -1 when it does not refer
// to a position in a collection.
type MalformedRecordError struct {
	Index   int
	Missing []string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	b.WriteString("malformed record")
	if e.Index >= 0 {
		fmt.Fprintf(&b, " at index %d", e.Index)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// ContentReadError wraps a failure to extract a document's text.
type ContentReadError struct {
	Name string
	Err  error
}

func (e *ContentReadError) Error() string {
	return fmt.Sprintf("read content of %q: %v", e.Name, e.Err)
}

func (e *ContentReadError) Unwrap() error {
	return e.Err
}

func (e *ContentReadError) Is(target error) bool {
	return target == ErrContentRead
}
