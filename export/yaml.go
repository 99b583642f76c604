// ABOUTME: Exports the workspace's documents as a YAML manifest with their full content.
// ABOUTME: Uses gopkg.in/yaml.v3; content is written as a literal block so it reads as-is.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/plaintext/document"
)

// Literal marshals as a YAML literal block scalar.
type Literal string

func (l Literal) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.LiteralStyle,
		Tag:   "!!str",
		Value: string(l),
	}, nil
}

// YamlFile is one document in the manifest.
type YamlFile struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Modified string  `yaml:"modified"`
	Bytes    int     `yaml:"bytes"`
	Size     string  `yaml:"size"`
	Content  Literal `yaml:"content"`
}

// YamlManifest is the top-level export document.
type YamlManifest struct {
	Count int        `yaml:"count"`
	Files []YamlFile `yaml:"files"`
}

// YAML exports docs in collection order. Any unreadable document fails the
// whole export.
func YAML(ctx context.Context, docs []document.Document) ([]byte, error) {
	m := YamlManifest{
		Count: len(docs),
		Files: make([]YamlFile, 0, len(docs)),
	}
	for _, d := range docs {
		text, err := d.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", d.Name, err)
		}
		m.Files = append(m.Files, YamlFile{
			Name:     d.Name,
			Type:     d.MimeType,
			Modified: d.LastModified.UTC().Format(time.RFC3339),
			Bytes:    len(text),
			Size:     humanize.Bytes(uint64(len(text))),
			Content:  Literal(text),
		})
	}

	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return out, nil
}
