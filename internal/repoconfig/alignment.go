package repoconfig

import (
	"fmt"
	"strings"
)

// CheckAlignment reports whether a suggested directory follows the defined
// folder tree. It returns false and a human-readable warning when a path
// component matches neither a literal folder nor a variable placeholder with
// an acceptable value. Paths deeper than the defined tree are accepted.
func (c *Config) CheckAlignment(dir string) (bool, string) {
	level := c.Organization.Folders
	if len(level) == 0 {
		return true, ""
	}

	components := splitPath(dir)
	var walked []string
	for _, component := range components {
		if len(level) == 0 {
			return true, ""
		}

		next, matched, warning := c.matchComponent(level, component)
		if !matched {
			if len(walked) == 0 {
				return false, fmt.Sprintf("path doesn't match folder structure: %q is not a defined folder", component)
			}
			return false, fmt.Sprintf("path doesn't match folder structure: %q is not a defined folder under %q",
				component, strings.Join(walked, "/"))
		}
		if warning != "" {
			return false, "path alignment: " + warning
		}

		walked = append(walked, component)
		if next == nil {
			level = nil
		} else {
			level = next.Folders
		}
	}
	return true, ""
}

func (c *Config) matchComponent(level map[string]*FolderDefinition, component string) (*FolderDefinition, bool, string) {
	if def, ok := level[component]; ok {
		return def, true, ""
	}

	var fallback *FolderDefinition
	warning := ""
	matched := false
	for _, name := range sortedKeys(level) {
		variable, ok := placeholder(name)
		if !ok {
			continue
		}
		valid, msg := c.checkValue(variable, component)
		if valid {
			return level[name], true, ""
		}
		if !matched {
			matched = true
			fallback = level[name]
			warning = msg
		}
	}
	return fallback, matched, warning
}

func (c *Config) checkValue(variable, value string) (bool, string) {
	pattern := c.Organization.VariablePatterns[variable]
	if pattern == nil || len(pattern.Values) == 0 {
		return true, ""
	}
	for _, v := range pattern.Values {
		if v.Value == value {
			return true, ""
		}
		for _, alias := range v.Aliases {
			if alias == value {
				return true, ""
			}
		}
	}
	return false, fmt.Sprintf("%q is not a known value for {%s}", value, variable)
}

func placeholder(name string) (string, bool) {
	if len(name) > 2 && strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		return name[1 : len(name)-1], true
	}
	return "", false
}
