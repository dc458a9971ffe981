// Package config loads the YAML settings file controlling an engine's
// defaults and category-based output routing.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryInfo routes a set of file extensions to a dedicated output
// directory, e.g. archives to ~/Downloads/Archives.
type CategoryInfo struct {
	Name      string   `yaml:"name"`
	Exts      []string `yaml:"exts"`
	OutputDir string   `yaml:"outputDir"`
}

// Settings is the top-level configuration document.
type Settings struct {
	MaxChunks     int               `yaml:"maxChunks"`
	MaxRetries    int               `yaml:"maxRetries"`
	OutputDir     string            `yaml:"outputDir"`
	MainOutputDir string            `yaml:"mainOutputDir"`
	CategoryInfo  []CategoryInfo    `yaml:"categoryInfo"`
	CustomHeaders map[string]string `yaml:"customHeaders"`
	CustomCookie  string            `yaml:"customCookie"`
}

// Default returns a Settings populated with the engine's built-in
// fallbacks, used whenever no config file is supplied.
func Default() *Settings {
	return &Settings{MaxChunks: 300, MaxRetries: 3}
}

// Load reads and parses a YAML settings file at path. A missing path
// falls back to Default() rather than failing, since a config file is
// always optional.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	settings := Default()
	if err := yaml.Unmarshal(raw, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetMaxChunks returns the configured chunk cap with its fallback.
func (s *Settings) GetMaxChunks() int {
	if s.MaxChunks > 0 {
		return s.MaxChunks
	}
	return 300
}

// GetMaxRetries returns the configured retry cap with its fallback.
func (s *Settings) GetMaxRetries() int {
	if s.MaxRetries > 0 {
		return s.MaxRetries
	}
	return 3
}

// OutputDirFor determines the destination directory for fileName by
// looking up its extension against CategoryInfo, then MainOutputDir, then
// OutputDir, then the user's Downloads folder.
func (s *Settings) OutputDirFor(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext != "" {
		for _, category := range s.CategoryInfo {
			for _, candidate := range category.Exts {
				if strings.ToLower(candidate) == ext && category.OutputDir != "" {
					return category.OutputDir
				}
			}
		}
	}

	if s.MainOutputDir != "" {
		return s.MainOutputDir
	}
	if s.OutputDir != "" {
		return s.OutputDir
	}
	return defaultDownloadsDir()
}

func defaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
		return "."
	}
	return filepath.Join(home, "Downloads")
}
