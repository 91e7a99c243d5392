package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// PluginManifestFile is the conventional manifest file name under a
// plugin directory, per spec.md §6.
const PluginManifestFile = "plugins.json"

// SavePlugins writes the registry's current plugin set to
// <dir>/plugins.json as a JSON array of {identifier, version, summary}.
func (r *Registry) SavePlugins(dir string) error {
	plugins := r.Plugins()
	data, err := json.MarshalIndent(plugins, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal plugin manifest: %w", err)
	}
	path := filepath.Join(dir, PluginManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", path, err)
	}
	return nil
}

// LoadPluginsFromManifest reads <dir>/plugins.json and loads each entry,
// skipping ones already loaded rather than failing the whole batch.
func (r *Registry) LoadPluginsFromManifest(dir string) error {
	path := filepath.Join(dir, PluginManifestFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("registry: read %s: %w", path, err)
	}
	var plugins []Plugin
	if err := json.Unmarshal(data, &plugins); err != nil {
		return fmt.Errorf("registry: parse %s: %w", path, err)
	}
	for _, p := range plugins {
		if err := r.LoadPlugin(p); err != nil {
			continue
		}
	}
	return nil
}
