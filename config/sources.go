package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// SourceOverride replaces the built-in request URL template of a source.
// "{locality}" in URL is substituted with the city slug.
type SourceOverride struct {
	URL string `yaml:"url"`
}

type sourcesFile struct {
	Sources map[string]SourceOverride `yaml:"sources"`
}

// LoadSources reads a YAML file of the form
//
//	sources:
//	  magicbricks:
//	    url: https://www.magicbricks.com/ready-to-move-flats-in-{locality}-pppfs
//
// and returns source id -> URL template. An empty path yields no overrides.
func LoadSources(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read sources file %q: %w", path, err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse sources file %q: %w", path, err)
	}

	templates := make(map[string]string, len(f.Sources))
	for id, src := range f.Sources {
		id = strings.ToLower(strings.TrimSpace(id))
		tmpl := strings.TrimSpace(src.URL)
		if id == "" || tmpl == "" {
			return nil, fmt.Errorf("config: sources file %q: entry %q needs a url", path, id)
		}
		if !strings.Contains(tmpl, "{locality}") {
			return nil, fmt.Errorf("config: sources file %q: url for %q has no {locality} placeholder", path, id)
		}
		templates[id] = tmpl
	}
	return templates, nil
}
