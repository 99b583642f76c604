// ABOUTME: Seeders supply the documents a workspace starts with when its store is empty.
// ABOUTME: Default serves the sample files embedded at compile time; FromFS seeds from any directory.
package seed

import (
	"embed"
	"io/fs"
	"log"
	"path"
	"time"

	"github.com/2389-research/plaintext/document"
)

//go:embed files/*
var defaultFS embed.FS

// Seeder returns the initial documents for an empty workspace. It is called at
// most once per workspace.
type Seeder func() []document.Document

// Default returns the embedded sample files.
func Default() []document.Document {
	sub, err := fs.Sub(defaultFS, "files")
	if err != nil {
		log.Printf("component=seed action=open_embedded err=%v", err)
		return nil
	}
	return FromFS(sub)()
}

// FromFS seeds from the regular files at the top level of fsys, in name order.
// MIME types come from the extension. Unreadable files are skipped and logged.
func FromFS(fsys fs.FS) Seeder {
	return func() []document.Document {
		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			log.Printf("component=seed action=read_dir err=%v", err)
			return nil
		}
		now := time.Now()
		docs := make([]document.Document, 0, len(entries))
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			data, err := fs.ReadFile(fsys, e.Name())
			if err != nil {
				log.Printf("component=seed action=read_file name=%s err=%v", e.Name(), err)
				continue
			}
			name := path.Base(e.Name())
			docs = append(docs, document.Document{
				Name:         name,
				MimeType:     document.TypeByExtension(name),
				LastModified: now,
				Blob:         document.TextBlob(data),
			})
		}
		return docs
	}
}

// Static always returns docs.
func Static(docs ...document.Document) Seeder {
	return func() []document.Document {
		return append([]document.Document(nil), docs...)
	}
}
