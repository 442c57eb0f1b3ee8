package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names looked up in the user config directory,
// in order.
var FileNames = []string{"config.json", "config.toml", "config.yaml"}

// Loader is a kong.ConfigurationLoader that accepts JSON, TOML or YAML.
// Keys are flag names, e.g. "log-level" or "log_level".
//
// The format is sniffed from the content: JSON is tried first, then TOML,
// then YAML. An empty file resolves nothing.
func Loader(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	values, err := decode(data)
	if err != nil {
		return nil, err
	}
	// kong's JSON resolver matches snake_case keys only.
	snake := make(map[string]any, len(values))
	for k, v := range values {
		snake[strings.ReplaceAll(k, "-", "_")] = v
	}
	normalized, err := json.Marshal(snake)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return kong.JSON(bytes.NewReader(normalized))
}

func decode(data []byte) (map[string]any, error) {
	values := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err == nil {
		return values, nil
	}

	clear(values)
	if _, err := toml.Decode(string(data), &values); err == nil {
		return values, nil
	}

	clear(values)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("config: not valid JSON, TOML or YAML: %w", err)
	}
	return values, nil
}

// DefaultPaths returns the candidate config files in the user config
// directory, or nil when it cannot be determined.
func DefaultPaths() []string {
	dir := defaultDir()
	if dir == "" {
		return nil
	}
	paths := make([]string, len(FileNames))
	for i, name := range FileNames {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}
