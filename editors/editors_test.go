// ABOUTME: Tests for MIME resolution and capability dispatch in the editor registry.
// ABOUTME: Uses string renderers so results can be compared directly.
package editors

import (
	"testing"

	"github.com/2389-research/plaintext/document"
)

func stringRegistry() *Registry[string] {
	return Defaults(
		Editable[string]{Name: "plain", Render: func(p EditorProps) string { return "plain:" + p.Document.Name }},
		Editable[string]{Name: "markdown", Render: func(p EditorProps) string { return "md:" + p.Document.Name }},
		Preview[string]{Name: "preview", Render: func(p PreviewProps) string { return "preview:" + p.Document.Name }},
	)
}

func TestResolve(t *testing.T) {
	r := stringRegistry()
	tests := []struct {
		mime     string
		wantName string
		editable bool
	}{
		{document.TypePlain, "plain", true},
		{document.TypeMarkdown, "markdown", true},
		{document.TypeJavaScript, "preview", false},
		{document.TypeJSON, "preview", false},
		{"text/plain; charset=utf-8", "preview", false},
		{"text/*", "preview", false},
		{"", "preview", false},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			c := r.Resolve(tt.mime)
			switch c := c.(type) {
			case Editable[string]:
				if !tt.editable || c.Name != tt.wantName {
					t.Errorf("got editable %q, want %q editable=%v", c.Name, tt.wantName, tt.editable)
				}
			case Preview[string]:
				if tt.editable || c.Name != tt.wantName {
					t.Errorf("got preview %q, want %q editable=%v", c.Name, tt.wantName, tt.editable)
				}
			default:
				t.Fatalf("unexpected capability %T", c)
			}
			if r.IsEditable(tt.mime) != tt.editable {
				t.Errorf("IsEditable = %v", !tt.editable)
			}
		})
	}
}

func TestRenderPassesWriteOnlyToEditables(t *testing.T) {
	var gotWrite bool
	r := NewRegistry(Preview[bool]{Render: func(PreviewProps) bool { return false }})
	r.Register(document.TypePlain, Editable[bool]{Render: func(p EditorProps) bool {
		gotWrite = p.Write != nil
		return true
	}})

	write := func(document.Document) error { return nil }
	if !Render[bool](r.Resolve(document.TypePlain), document.NewText("a.txt", document.TypePlain, ""), write) {
		t.Error("plain text should render through the editor")
	}
	if !gotWrite {
		t.Error("editor did not receive write")
	}
	if Render[bool](r.Resolve(document.TypeJSON), document.NewText("a.json", document.TypeJSON, ""), write) {
		t.Error("json should render through the preview")
	}
}

func TestRegisterReplacesAndTypesSorted(t *testing.T) {
	r := stringRegistry()
	r.Register(document.TypeJSON, Editable[string]{Name: "json", Render: func(EditorProps) string { return "" }})
	r.Register(document.TypePlain, Editable[string]{Name: "plain2", Render: func(EditorProps) string { return "" }})

	if e, ok := r.Resolve(document.TypePlain).(Editable[string]); !ok || e.Name != "plain2" {
		t.Errorf("Register did not replace plain editor")
	}
	got := r.Types()
	want := []string{document.TypeJSON, document.TypeMarkdown, document.TypePlain}
	if len(got) != len(want) {
		t.Fatalf("Types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderNilCapability(t *testing.T) {
	if got := Render[string](nil, document.Document{}, nil); got != "" {
		t.Errorf("nil capability rendered %q", got)
	}
}
