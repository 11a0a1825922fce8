package repoconfig

import (
	"sort"
	"strings"
)

// Serialize renders the folder tree, default convention and variable
// patterns as deterministic text. It is empty when none are defined.
func (c *Config) Serialize() string {
	var b strings.Builder
	org := c.Organization

	if org.DefaultFilenameConvention != "" {
		b.WriteString("Default filename convention: ")
		b.WriteString(org.DefaultFilenameConvention)
		b.WriteString("\n")
	}

	if len(org.VariablePatterns) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Variable patterns:\n")
		for _, name := range sortedKeys(org.VariablePatterns) {
			p := org.VariablePatterns[name]
			b.WriteString("- {" + name + "}")
			if p != nil && p.Description != "" {
				b.WriteString(": " + p.Description)
			}
			if p != nil && len(p.Values) > 0 {
				b.WriteString(" [values: " + renderValues(p.Values) + "]")
			}
			b.WriteString("\n")
		}
	}

	if len(org.Folders) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Folders:\n")
		renderFolders(&b, org.Folders, 0)
	}

	return strings.TrimRight(b.String(), "\n")
}

// OrganizationInstructions is the instructions text followed by the rendered
// folder structure, whichever of the two is present.
func (c *Config) OrganizationInstructions() string {
	var sections []string
	if c.Instructions != "" {
		sections = append(sections, c.Instructions)
	}
	if rendered := c.Serialize(); rendered != "" {
		sections = append(sections, "### Folder Structure\n\n"+rendered)
	}
	return strings.Join(sections, "\n\n")
}

func renderFolders(b *strings.Builder, folders map[string]*FolderDefinition, depth int) {
	for _, name := range sortedKeys(folders) {
		def := folders[name]
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- " + name)
		if def != nil {
			if def.Description != "" {
				b.WriteString(": " + def.Description)
			}
			if def.FilenameConvention != "" {
				b.WriteString(" [filename: " + def.FilenameConvention + "]")
			}
		}
		b.WriteString("\n")
		if def != nil && len(def.Folders) > 0 {
			renderFolders(b, def.Folders, depth+1)
		}
	}
}

func renderValues(values []PatternValue) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		part := v.Value
		if v.Description != "" {
			part += " - " + v.Description
		}
		if len(v.Aliases) > 0 {
			part += " (aliases: " + strings.Join(v.Aliases, ", ") + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
