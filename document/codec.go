// ABOUTME: Blob codec converting documents to and from flat, storage-safe records.
// ABOUTME: CollectionCodec encodes a whole collection as a JSON array and skips malformed entries on decode.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Record is the storage form of a Document. Field names match the format
// written by earlier versions of the workspace so existing stores still load.
type Record struct {
	LastModified int64  `json:"lastModified"` // unix milliseconds
	Name         string `json:"name"`
	Text         string `json:"text"`
	Type         string `json:"type"`
}

// wireRecord distinguishes absent fields from zero values while decoding.
type wireRecord struct {
	LastModified *int64  `json:"lastModified"`
	Name         *string `json:"name"`
	Text         *string `json:"text"`
	Type         *string `json:"type"`
}

// Encode reads the document's full text and produces its record. No record is
// returned when the text cannot be read.
func Encode(ctx context.Context, d Document) (Record, error) {
	text, err := d.Text(ctx)
	if err != nil {
		return Record{}, err
	}
	return Record{
		LastModified: d.LastModified.UnixMilli(),
		Name:         d.Name,
		Text:         text,
		Type:         d.MimeType,
	}, nil
}

// Decode rebuilds a live document from a record.
func Decode(r Record) (Document, error) {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return Document{}, &MalformedRecordError{Index: -1, Missing: missing}
	}
	return Document{
		Name:         r.Name,
		MimeType:     r.Type,
		LastModified: time.UnixMilli(r.LastModified),
		Blob:         TextBlob(r.Text),
	}, nil
}

func decodeWire(raw json.RawMessage) (Document, error) {
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return Document{}, &MalformedRecordError{Index: -1, Err: err}
	}
	var missing []string
	if w.Name == nil {
		missing = append(missing, "name")
	}
	if w.Type == nil {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return Document{}, &MalformedRecordError{Index: -1, Missing: missing}
	}
	r := Record{Name: *w.Name, Type: *w.Type}
	if w.LastModified != nil {
		r.LastModified = *w.LastModified
	}
	if w.Text != nil {
		r.Text = *w.Text
	}
	return Decode(r)
}

// CollectionCodec persists an ordered document collection as a JSON array of
// records.
type CollectionCodec struct {
	// OnMalformed is told about every record skipped during Decode.
	OnMalformed func(error)
}

// Encode encodes every document. The first unreadable document aborts the whole
// encode so a collection is never partially persisted.
func (c CollectionCodec) Encode(ctx context.Context, docs []Document) (string, error) {
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		r, err := Encode(ctx, d)
		if err != nil {
			return "", err
		}
		records = append(records, r)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return string(data), nil
}

// Decode parses a JSON array of records. Malformed entries and duplicate names
// are skipped; only a payload that is not a JSON array fails outright.
func (c CollectionCodec) Decode(raw string) ([]Document, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &MalformedRecordError{Index: -1, Err: err}
	}

	docs := make([]Document, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		d, err := decodeWire(item)
		if err != nil {
			if mre, ok := err.(*MalformedRecordError); ok {
				mre.Index = i
			}
			c.malformed(err)
			continue
		}
		if seen[d.Name] {
			c.malformed(&MalformedRecordError{Index: i, Err: fmt.Errorf("duplicate name %q", d.Name)})
			continue
		}
		seen[d.Name] = true
		docs = append(docs, d)
	}
	return docs, nil
}

func (c CollectionCodec) malformed(err error) {
	if c.OnMalformed != nil {
		c.OnMalformed(err)
	}
}
