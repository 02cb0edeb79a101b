package keybinds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the keybinding override file inside the config directory
const FileName = "keybinds.yaml"

// Config represents the user's keybinding configuration.
// Each section maps an action to comma separated keys.
type Config struct {
	Global  map[string]string `yaml:"global,omitempty"`
	Login   map[string]string `yaml:"login,omitempty"`
	Table   map[string]string `yaml:"table,omitempty"`
	Search  map[string]string `yaml:"search,omitempty"`
	Form    map[string]string `yaml:"form,omitempty"`
	Confirm map[string]string `yaml:"confirm,omitempty"`
	Detail  map[string]string `yaml:"detail,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:  c.Global,
		ContextLogin:   c.Login,
		ContextTable:   c.Table,
		ContextSearch:  c.Search,
		ContextForm:    c.Form,
		ContextConfirm: c.Confirm,
		ContextDetail:  c.Detail,
	}
}

// LoadConfig loads keybinding configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", FileName, err)
	}
	return &config, nil
}

// SaveConfig saves keybinding configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SplitKeys parses "up, k" into ["up" "k"]. A value of exactly "," or " "
// is that single key, and "space" inside a list names the space bar.
// Blank entries such as " , " are dropped.
func SplitKeys(s string) []string {
	if s == "," || s == " " {
		return []string{s}
	}
	var keys []string
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		switch k {
		case "":
			continue
		case "space":
			k = " "
		}
		keys = append(keys, k)
	}
	return keys
}

// joinKeys is the inverse of SplitKeys
func joinKeys(keys []string) string {
	if len(keys) == 1 {
		return keys[0]
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		out[i] = k
	}
	return strings.Join(out, ",")
}

// ApplyConfig applies user configuration to a registry.
// Every configured action loses its default keys in that context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, bindings := range config.sections() {
		for actionStr, keys := range bindings {
			action := Action(actionStr)
			if !IsKnown(action) {
				return fmt.Errorf("unknown action %q in context %q", actionStr, context)
			}
			parsed := SplitKeys(keys)
			if len(parsed) == 0 {
				return fmt.Errorf("action %q in context %q has no keys", actionStr, context)
			}
			for _, k := range parsed {
				if err := ValidateKey(k); err != nil {
					return fmt.Errorf("action %q in context %q: %w", actionStr, context, err)
				}
			}
			registry.Rebind(context, action, parsed)
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
		}
		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}

	return registry, nil
}

// LoadFromDir loads dir/keybinds.yaml over the defaults
func LoadFromDir(dir string) (*Registry, error) {
	return LoadOrDefault(filepath.Join(dir, FileName))
}

// ExportDefaults exports the default registry as a config
func ExportDefaults() *Config {
	r := NewDefaultRegistry()
	config := &Config{}
	sections := map[Context]*map[string]string{
		ContextGlobal:  &config.Global,
		ContextLogin:   &config.Login,
		ContextTable:   &config.Table,
		ContextSearch:  &config.Search,
		ContextForm:    &config.Form,
		ContextConfirm: &config.Confirm,
		ContextDetail:  &config.Detail,
	}
	for context, section := range sections {
		out := make(map[string]string)
		for _, b := range r.ListBindings(context) {
			if b.Action == ActionFirstPagePrep {
				continue
			}
			out[string(b.Action)] = joinKeys(r.keysIn(context, b.Action))
		}
		*section = out
	}
	return config
}
