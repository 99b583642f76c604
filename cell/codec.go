// ABOUTME: Codec converts a cell value to and from the string stored under its key.
// ABOUTME: JSONCodec handles plain values and also accepts values double-encoded as JSON strings.
package cell

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2389-research/plaintext/document"
)

// Codec encodes and decodes a cell's value. Encode may need to read lazily
// loaded content, so it takes a context and may fail.
type Codec[V any] interface {
	Encode(ctx context.Context, v V) (string, error)
	Decode(raw string) (V, error)
}

// JSONCodec stores values as JSON.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(_ context.Context, v V) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(data), nil
}

// Decode accepts both `3` and `"3"`; older stores wrapped values in a JSON string.
func (JSONCodec[V]) Decode(raw string) (V, error) {
	var v V
	err := json.Unmarshal([]byte(raw), &v)
	if err == nil {
		return v, nil
	}

	var inner string
	if json.Unmarshal([]byte(raw), &inner) != nil {
		return v, &document.MalformedRecordError{Index: -1, Err: err}
	}
	var nested V
	if nerr := json.Unmarshal([]byte(inner), &nested); nerr != nil {
		return v, &document.MalformedRecordError{Index: -1, Err: nerr}
	}
	return nested, nil
}
