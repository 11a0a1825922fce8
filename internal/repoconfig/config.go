// Package repoconfig reads and writes the per-repository organization
// settings kept under .docman/.
package repoconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"

	"github.com/docman-dev/docman/internal/repository"
)

// Config is the content of .docman/config.yaml together with the
// instructions text of .docman/instructions.md.
type Config struct {
	Organization Organization `yaml:"organization,omitempty"`

	// Instructions is the trimmed content of instructions.md.
	Instructions string `yaml:"-"`

	root string
}

// Organization groups the folder tree and naming rules.
type Organization struct {
	DefaultFilenameConvention string                       `yaml:"default_filename_convention,omitempty"`
	VariablePatterns          map[string]*VariablePattern  `yaml:"variable_patterns,omitempty"`
	Folders                   map[string]*FolderDefinition `yaml:"folders,omitempty"`
}

// FolderDefinition describes one folder of the intended structure. Names
// wrapped in braces such as "{year}" are variable placeholders.
type FolderDefinition struct {
	Description        string                       `yaml:"description,omitempty"`
	FilenameConvention string                       `yaml:"filename_convention,omitempty"`
	Folders            map[string]*FolderDefinition `yaml:"folders,omitempty"`
}

// VariablePattern documents a placeholder used in folder names and filename
// conventions. Values optionally restricts it to known values.
type VariablePattern struct {
	Description string         `yaml:"description"`
	Values      []PatternValue `yaml:"values,omitempty"`
}

// PatternValue is one known value of a variable and its accepted aliases.
type PatternValue struct {
	Value       string   `yaml:"value"`
	Description string   `yaml:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty"`
}

// UnmarshalYAML accepts either a plain description string or a mapping.
func (p *VariablePattern) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Description = node.Value
		p.Values = nil
		return nil
	}

	type plain VariablePattern
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*p = VariablePattern(decoded)
	return nil
}

// MarshalYAML writes patterns without values in their short string form.
func (p VariablePattern) MarshalYAML() (any, error) {
	if len(p.Values) == 0 {
		return p.Description, nil
	}
	type plain VariablePattern
	return plain(p), nil
}

// Load reads the repository config rooted at root. A missing or empty
// config.yaml yields an empty config.
func Load(root string) (*Config, error) {
	cfg := &Config{root: root}

	//nolint:gosec // G304: path is inside the repository metadata directory
	raw, err := os.ReadFile(repository.ConfigPath(root))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", repository.ConfigPath(root))
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "read %s", repository.ConfigPath(root))
	}

	instructions, err := LoadInstructions(root)
	if err != nil {
		return nil, err
	}
	cfg.Instructions = instructions
	return cfg, nil
}

// LoadInstructions returns the trimmed instructions text, or "" when unset.
func LoadInstructions(root string) (string, error) {
	//nolint:gosec // G304: path is inside the repository metadata directory
	raw, err := os.ReadFile(repository.InstructionsPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "read %s", repository.InstructionsPath(root))
	}
	return strings.TrimSpace(string(raw)), nil
}

// SaveInstructions replaces the instructions file of root.
func SaveInstructions(root, content string) error {
	path := repository.InstructionsPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Save writes the YAML part of the config back to config.yaml.
func (c *Config) Save() error {
	if c.root == "" {
		return errors.New("repoconfig: config was not loaded from a repository")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encode config")
	}

	data := buf.Bytes()
	if strings.TrimSpace(string(data)) == "{}" {
		data = nil
	}
	if err := os.WriteFile(repository.ConfigPath(c.root), data, 0o600); err != nil {
		return errors.Wrapf(err, "write %s", repository.ConfigPath(c.root))
	}
	return nil
}

// AddFolderDefinition creates the folder at a slash-separated path, adding
// missing parents. Empty description or convention leave existing values.
func (c *Config) AddFolderDefinition(path, description, convention string) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return errors.Errorf("folder path %q is empty", path)
	}

	if c.Organization.Folders == nil {
		c.Organization.Folders = make(map[string]*FolderDefinition)
	}
	level := c.Organization.Folders
	var node *FolderDefinition
	for i, part := range parts {
		node = level[part]
		if node == nil {
			node = &FolderDefinition{}
			level[part] = node
		}
		if i < len(parts)-1 {
			if node.Folders == nil {
				node.Folders = make(map[string]*FolderDefinition)
			}
			level = node.Folders
		}
	}

	if description != "" {
		node.Description = description
	}
	if convention != "" {
		node.FilenameConvention = convention
	}
	return nil
}

// AddVariablePattern defines or replaces the description of a variable.
func (c *Config) AddVariablePattern(name, description string) error {
	name = strings.Trim(strings.TrimSpace(name), "{}")
	if name == "" {
		return errors.New("variable pattern name is empty")
	}
	if c.Organization.VariablePatterns == nil {
		c.Organization.VariablePatterns = make(map[string]*VariablePattern)
	}
	if existing := c.Organization.VariablePatterns[name]; existing != nil {
		existing.Description = description
		return nil
	}
	c.Organization.VariablePatterns[name] = &VariablePattern{Description: description}
	return nil
}

// RemoveVariablePattern deletes a variable and reports whether it existed.
func (c *Config) RemoveVariablePattern(name string) bool {
	name = strings.Trim(strings.TrimSpace(name), "{}")
	if _, ok := c.Organization.VariablePatterns[name]; !ok {
		return false
	}
	delete(c.Organization.VariablePatterns, name)
	return true
}

// ErrUnknownPattern is returned for a variable pattern that is not defined.
var ErrUnknownPattern = errors.New("variable pattern not defined")

// AddPatternValue adds a known value to the named pattern. With aliasOf it
// instead records value as an alternative spelling of that canonical value.
func (c *Config) AddPatternValue(name, value, description, aliasOf string) error {
	name = strings.Trim(strings.TrimSpace(name), "{}")
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("pattern value is empty")
	}
	pattern := c.Organization.VariablePatterns[name]
	if pattern == nil {
		return errors.Wrapf(ErrUnknownPattern, "{%s}", name)
	}

	if aliasOf == "" {
		for i := range pattern.Values {
			if pattern.Values[i].Value == value {
				if description != "" {
					pattern.Values[i].Description = description
				}
				return nil
			}
		}
		pattern.Values = append(pattern.Values, PatternValue{Value: value, Description: description})
		return nil
	}

	for i := range pattern.Values {
		v := &pattern.Values[i]
		if v.Value != aliasOf {
			continue
		}
		if !slices.Contains(v.Aliases, value) {
			v.Aliases = append(v.Aliases, value)
		}
		return nil
	}
	return errors.Errorf("{%s} has no value %q to alias", name, aliasOf)
}

// RemovePatternValue removes value from the named pattern. A canonical value
// goes together with its aliases; an alias is removed on its own. It reports
// whether value was an alias.
func (c *Config) RemovePatternValue(name, value string) (alias bool, err error) {
	name = strings.Trim(strings.TrimSpace(name), "{}")
	pattern := c.Organization.VariablePatterns[name]
	if pattern == nil {
		return false, errors.Wrapf(ErrUnknownPattern, "{%s}", name)
	}

	for i := range pattern.Values {
		v := &pattern.Values[i]
		if v.Value == value {
			pattern.Values = slices.Delete(pattern.Values, i, i+1)
			return false, nil
		}
		if j := slices.Index(v.Aliases, value); j >= 0 {
			v.Aliases = slices.Delete(v.Aliases, j, j+1)
			return true, nil
		}
	}
	return false, errors.Errorf("{%s} has no value %q", name, value)
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(strings.ReplaceAll(path, `\`, "/"), "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
