package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

// Note is a markdown file with an optional YAML frontmatter block.
type Note struct {
	Meta map[string]any
	Body string
}

// ParseNote splits content into frontmatter and body. Content without a
// leading separator is all body.
func ParseNote(content string) (Note, error) {
	if !strings.HasPrefix(content, separator) {
		return Note{Meta: map[string]any{}, Body: content}, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, "\n"+separator)
	if idx < 0 {
		return Note{}, fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Note{}, fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return Note{Meta: meta, Body: rest[idx+len("\n"+separator):]}, nil
}

func (n Note) Render() (string, error) {
	meta := n.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(n.Body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(n.Body)
	return buf.String(), nil
}
