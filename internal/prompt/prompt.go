// Package prompt loads and serves versioned prompt templates from a YAML
// library file.
//
// The file groups prompts by category, each category keyed by version:
//
//	default_versions:
//	  sales_agent_matching: v2
//	prompts:
//	  sales_agent_matching:
//	    v1: {system: "...", user_template: "..."}
//	    v2: {system: "...", user_template: "..."}
//	  sales_agent_context:
//	    v1: {context: "..."}
//
// Version resolution: explicit argument, then a per-category override from
// configuration, then the file's default_versions entry, then "v1".
package prompt

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// fallbackVersion is used when neither the caller nor the library names one.
const fallbackVersion = "v1"

// Prompt is one resolved prompt entry.
type Prompt struct {
	System       string `yaml:"system"`
	UserTemplate string `yaml:"user_template"`
	Context      string `yaml:"context"`

	Category string `yaml:"-"`
	Version  string `yaml:"-"`
}

type libraryFile struct {
	DefaultVersions map[string]string            `yaml:"default_versions"`
	Prompts         map[string]map[string]Prompt `yaml:"prompts"`
}

// Library holds the parsed prompt file plus configured version overrides.
type Library struct {
	defaults  map[string]string
	overrides map[string]string
	prompts   map[string]map[string]Prompt
}

// Load reads a prompt library from path. overrides maps category names to
// version names and takes precedence over the file's default_versions.
func Load(path string, overrides map[string]string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "prompt: read %s", path)
	}

	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "prompt: parse %s", path)
	}
	if len(file.Prompts) == 0 {
		return nil, eris.Errorf("prompt: %s defines no prompts", path)
	}

	return &Library{
		defaults:  file.DefaultVersions,
		overrides: overrides,
		prompts:   file.Prompts,
	}, nil
}

// Get resolves a prompt by category. An empty version selects the configured
// override, then the library default, then "v1". Unknown categories and
// versions are errors.
func (l *Library) Get(category, version string) (Prompt, error) {
	versions, ok := l.prompts[category]
	if !ok {
		return Prompt{}, eris.Errorf("prompt: category %q not found", category)
	}

	if version == "" {
		if v, ok := l.overrides[category]; ok {
			version = v
		} else if v, ok := l.defaults[category]; ok {
			version = v
		} else {
			version = fallbackVersion
		}
	}

	p, ok := versions[version]
	if !ok {
		return Prompt{}, eris.Errorf("prompt: version %q not found for category %q (have %s)",
			version, category, strings.Join(versionNames(versions), ", "))
	}

	p.Category = category
	p.Version = version
	return p, nil
}

// Categories lists the available prompt categories.
func (l *Library) Categories() []string {
	out := make([]string, 0, len(l.prompts))
	for c := range l.prompts {
		out = append(out, c)
	}
	return out
}

// Versions lists the available versions for a category.
func (l *Library) Versions(category string) ([]string, error) {
	versions, ok := l.prompts[category]
	if !ok {
		return nil, eris.Errorf("prompt: category %q not found", category)
	}
	return versionNames(versions), nil
}

func versionNames(versions map[string]Prompt) []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	return out
}

// Format substitutes {name} placeholders in a template. Placeholders with no
// matching variable are left untouched; callers that care check with
// HasPlaceholder first.
func Format(template string, vars map[string]string) string {
	for name, value := range vars {
		template = strings.ReplaceAll(template, "{"+name+"}", value)
	}
	return template
}

// HasPlaceholder reports whether a template references {name}.
func HasPlaceholder(template, name string) bool {
	return strings.Contains(template, "{"+name+"}")
}
