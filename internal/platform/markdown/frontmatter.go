package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	separator      = "---\n"
	closeSeparator = "\n---\n"
)

// SplitFrontmatter separates a leading yaml block from the body. Content
// without frontmatter comes back as body with an empty raw block.
func SplitFrontmatter(content string) (string, string, error) {
	if !strings.HasPrefix(content, separator) {
		return "", content, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, closeSeparator)
	if idx < 0 {
		return "", "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	return rest[:idx], rest[idx+len(closeSeparator):], nil
}

// DecodeFrontmatter unmarshals the yaml block into out and returns the body.
func DecodeFrontmatter(content string, out any) (string, error) {
	raw, body, err := SplitFrontmatter(content)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(raw), out); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return body, nil
}

// RenderFrontmatter accepts any yaml-marshalable value; structs keep their
// field order.
func RenderFrontmatter(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}
