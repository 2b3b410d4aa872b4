package render

import (
	"strings"

	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// Property is one "- **Key**: value" line. Empty values are omitted.
type Property struct {
	Key   string
	Value string
}

// page is the common shape of every entity note.
type page struct {
	kind        world.Kind
	tags        []string
	aliases     []string
	front       Frontmatter
	title       string
	beforeProps string
	props       []Property
	body        string
	removed     bool
}

func propertyList(props []Property) string {
	var lines []string
	for _, p := range props {
		if p.Value == "" {
			continue
		}
		lines = append(lines, "- **"+p.Key+"**: "+p.Value)
	}
	return strings.Join(lines, "\n")
}

func (p page) render() (string, error) {
	var fm Frontmatter
	tags := append([]string{string(p.kind)}, p.tags...)
	if p.removed {
		tags = append(tags, "removed")
	}
	fm.Set("tags", tags)
	if len(p.aliases) > 0 {
		fm.Set("aliases", p.aliases)
	}
	fm = append(fm, p.front...)
	head, err := fm.Render()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString("\n")
	sb.WriteString("# " + p.title + "\n\n")
	if p.beforeProps != "" {
		sb.WriteString(p.beforeProps)
		sb.WriteString("\n\n")
	}
	if list := propertyList(p.props); list != "" {
		sb.WriteString(list)
		sb.WriteString("\n\n")
	}
	if p.body != "" {
		sb.WriteString(p.body)
		sb.WriteString("\n\n")
	}
	sb.WriteString(vault.CustomBlock(""))
	sb.WriteString("\n")
	return sb.String(), nil
}

func joinLinks(links []vault.Link) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, l.Markdown())
	}
	return strings.Join(parts, ", ")
}
