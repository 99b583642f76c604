// ABOUTME: Document is a named, typed text file held in the workspace collection.
// ABOUTME: Content lives behind a Blob whose text may need to be extracted (and may fail) at persist time.
package document

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"
)

// Known MIME types. Editors and icons key off these exact strings.
const (
	TypePlain      = "text/plain"
	TypeMarkdown   = "text/markdown"
	TypeJavaScript = "text/javascript"
	TypeJSON       = "application/json"
)

// Blob is the content of a document. Text may block and may fail.
type Blob interface {
	Text(ctx context.Context) (string, error)
}

// TextBlob is an in-memory blob that always succeeds.
type TextBlob string

// Text returns the blob contents.
func (b TextBlob) Text(context.Context) (string, error) {
	return string(b), nil
}

// readerBlob reads its source lazily once and caches the result, including a failure.
type readerBlob struct {
	once sync.Once
	r    io.Reader
	text string
	err  error
}

func (b *readerBlob) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.once.Do(func() {
		data, err := io.ReadAll(b.r)
		b.text, b.err = string(data), err
		if c, ok := b.r.(io.Closer); ok {
			_ = c.Close()
		}
	})
	return b.text, b.err
}

// Document is one file in the workspace. Name is unique within a collection and
// doubles as the display name and storage key.
type Document struct {
	Name         string
	MimeType     string
	LastModified time.Time
	Blob         Blob
}

// NewText builds a document around an in-memory text payload.
func NewText(name, mimeType, content string) Document {
	return Document{
		Name:         name,
		MimeType:     mimeType,
		LastModified: time.Now(),
		Blob:         TextBlob(content),
	}
}

// NewFromReader builds a document whose text is read from r the first time it is
// needed. A read failure surfaces when the document is encoded.
func NewFromReader(name, mimeType string, lastModified time.Time, r io.Reader) Document {
	return Document{
		Name:         name,
		MimeType:     mimeType,
		LastModified: lastModified,
		Blob:         &readerBlob{r: r},
	}
}

// Text extracts the full text content. A document without a blob is empty.
func (d Document) Text(ctx context.Context) (string, error) {
	if d.Blob == nil {
		return "", nil
	}
	text, err := d.Blob.Text(ctx)
	if err != nil {
		return "", &ContentReadError{Name: d.Name, Err: err}
	}
	return text, nil
}

// WithText returns a copy of d carrying new content. d itself is not modified.
func (d Document) WithText(content string) Document {
	d.Blob = TextBlob(content)
	return d
}

// BaseName is the display form of the name (last path element).
func (d Document) BaseName() string {
	return path.Base(d.Name)
}

// String is used in log lines.
func (d Document) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.MimeType)
}

var extensionTypes = map[string]string{
	".txt":  TypePlain,
	".md":   TypeMarkdown,
	".js":   TypeJavaScript,
	".json": TypeJSON,
}

// TypeByExtension maps a file name to one of the known MIME types, falling back
// to text/plain.
func TypeByExtension(name string) string {
	if t, ok := extensionTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return TypePlain
}
