package provenance

import (
	"slices"
	"strings"
)

// Delimiter brackets placeholder names in templates: "//%name//%".
const Delimiter = "//%"

// Expand substitutes sections into template. The template alternates literal text
// and placeholder names separated by Delimiter. Every placeholder must name exactly
// one section and every section must be used exactly once. Each used section is
// spliced (and thereby consumed) into the returned Builder, whose index is expressed
// in absolute lines of the expanded text.
func Expand(template string, sections map[string]*Builder) (*Builder, error) {
	parts := strings.Split(template, Delimiter)
	if len(parts)%2 == 0 {
		return nil, &TemplateError{Reason: UnterminatedPlaceholder, Name: parts[len(parts)-1]}
	}

	used := make(map[string]bool, len(sections))
	for i := 1; i < len(parts); i += 2 {
		name := parts[i]
		if used[name] {
			return nil, &TemplateError{Reason: DuplicatePlaceholder, Name: name}
		}
		if sec, ok := sections[name]; !ok || sec == nil {
			return nil, &TemplateError{Reason: MissingSection, Name: name}
		}
		used[name] = true
	}
	if len(used) != len(sections) {
		unused := make([]string, 0, len(sections)-len(used))
		for name := range sections {
			if !used[name] {
				unused = append(unused, name)
			}
		}
		slices.Sort(unused)
		return nil, &TemplateError{Reason: UnusedSection, Name: unused[0]}
	}

	out := NewBuilder()
	for i, part := range parts {
		if i%2 == 0 {
			out.Append(part)
			continue
		}
		if err := out.Splice(sections[part]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
