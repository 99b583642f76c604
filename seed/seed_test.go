// ABOUTME: Tests for the embedded default seeder and directory-based seeding.
// ABOUTME: Checks names, MIME types, and content of the sample files.
package seed

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/2389-research/plaintext/document"
)

func TestDefaultSeedsSampleFiles(t *testing.T) {
	docs := Default()
	want := map[string]string{
		"README.md": document.TypeMarkdown,
		"app.js":    document.TypeJavaScript,
		"data.json": document.TypeJSON,
		"notes.txt": document.TypePlain,
	}
	if len(docs) != len(want) {
		t.Fatalf("got %d docs, want %d", len(docs), len(want))
	}
	for _, d := range docs {
		mime, ok := want[d.Name]
		if !ok {
			t.Errorf("unexpected doc %q", d.Name)
			continue
		}
		if d.MimeType != mime {
			t.Errorf("%s type = %q, want %q", d.Name, d.MimeType, mime)
		}
		text, err := d.Text(context.Background())
		if err != nil || text == "" {
			t.Errorf("%s text = %q err=%v", d.Name, text, err)
		}
		if d.LastModified.IsZero() {
			t.Errorf("%s has no LastModified", d.Name)
		}
	}
}

func TestFromFSSkipsDirectories(t *testing.T) {
	fsys := fstest.MapFS{
		"b.txt":        {Data: []byte("bee")},
		"a.md":         {Data: []byte("# a")},
		"sub/c.json":   {Data: []byte("{}")},
		"unknown.yaml": {Data: []byte("k: v")},
	}
	docs := FromFS(fsys)()
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}
	if docs[0].Name != "a.md" || docs[1].Name != "b.txt" {
		t.Errorf("order = %s, %s; want name order", docs[0].Name, docs[1].Name)
	}
	if docs[2].MimeType != document.TypePlain {
		t.Errorf("unknown extension type = %q, want text/plain", docs[2].MimeType)
	}
}

func TestStaticCopies(t *testing.T) {
	s := Static(document.NewText("a.txt", document.TypePlain, "hello"))
	first := s()
	first[0].Name = "changed"
	if s()[0].Name != "a.txt" {
		t.Error("Static must return a fresh slice on every call")
	}
}
