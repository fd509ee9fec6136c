// Package manifest writes a canonical YAML description of a built archive.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/roast/internal/archive"
)

// Build returns the manifest document for res.
func Build(res archive.Result, reproducible bool) map[string]any {
	entries := make([]any, 0, len(res.Entries))
	for _, e := range res.Entries {
		mode := int64(e.Mode.Perm())
		if reproducible {
			mode = archive.ReproducibleMode(e.Type, e.Mode)
		}
		m := map[string]any{
			"path": e.Path,
			"type": e.Type.String(),
			"mode": fmt.Sprintf("%04o", mode),
		}
		switch e.Type {
		case archive.File:
			m["size"] = e.Size
		case archive.Symlink:
			m["link"] = e.Linkname
		}
		entries = append(entries, m)
	}
	return map[string]any{
		"output":       filepath.Base(res.Output),
		"format":       res.Format.String(),
		"digest":       res.Digest.String(),
		"size":         res.Size,
		"reproducible": reproducible,
		"entries":      entries,
	}
}

// Marshal returns canonical YAML bytes for the manifest of res.
func Marshal(res archive.Result, reproducible bool) ([]byte, error) {
	top := canonicalNode(Build(res, reproducible))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// Write writes the manifest of res to path, creating parent directories.
func Write(path string, res archive.Result, reproducible bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	b, err := Marshal(res, reproducible)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func canonicalNode(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.MappingNode}
	case map[string]any:
		return canonicalMapNode(x)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range x {
			n.Content = append(n.Content, canonicalNode(it))
		}
		return n
	default:
		return scalarFrom(x)
	}
}

func canonicalMapNode(m map[string]any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), canonicalNode(m[k]))
	}
	return n
}
