package render

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one frontmatter key. Fields keep their insertion order.
type Field struct {
	Key   string
	Value any
}

// Frontmatter is an ordered YAML mapping rendered between "---" fences.
type Frontmatter []Field

// Set appends key unless value is nil or an empty string.
func (f *Frontmatter) Set(key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case *string:
		if v == nil {
			return
		}
		value = *v
	}
	*f = append(*f, Field{Key: key, Value: value})
}

// Node builds the YAML mapping node.
func (f Frontmatter) Node() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range f {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Key}
		val := &yaml.Node{}
		if err := val.Encode(field.Value); err != nil {
			return nil, fmt.Errorf("frontmatter %s: %w", field.Key, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// Render returns the fenced YAML block, or "" for empty frontmatter.
func (f Frontmatter) Render() (string, error) {
	if len(f) == 0 {
		return "", nil
	}
	node, err := f.Node()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	return "---\n" + sb.String() + "---\n", nil
}
