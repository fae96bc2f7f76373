package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	for i, lang := range cfg.Server.Languages {
		if !lang.IsValid() {
			errs = append(errs, fmt.Errorf("server.languages[%d] %q is not supported", i, lang))
		}
	}

	if cfg.Catalog.ReloadSeconds < 0 {
		errs = append(errs, fmt.Errorf("catalog.reload_seconds %d is negative", cfg.Catalog.ReloadSeconds))
	}

	if cfg.Parser.WindowRunes < 0 {
		errs = append(errs, fmt.Errorf("parser.window_runes %d is negative", cfg.Parser.WindowRunes))
	}
	if t := cfg.Parser.Fuzzy.PhoneticThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("parser.fuzzy.phonetic_threshold %.2f is out of range [0, 1]", t))
	}
	if t := cfg.Parser.Fuzzy.SimilarThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("parser.fuzzy.similar_threshold %.2f is out of range [0, 1]", t))
	}

	setIDs := make(map[string]int, len(cfg.Recommend.SetMenus))
	for i, s := range cfg.Recommend.SetMenus {
		prefix := fmt.Sprintf("recommend.set_menus[%d]", i)
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else {
			if prev, ok := setIDs[s.ID]; ok {
				errs = append(errs, fmt.Errorf("%s.id %q is a duplicate of set_menus[%d]", prefix, s.ID, prev))
			}
			setIDs[s.ID] = i
		}
		if len(s.ItemIDs) == 0 {
			errs = append(errs, fmt.Errorf("%s.item_ids must not be empty", prefix))
		}
		if s.DiscountPercent < 0 || s.DiscountPercent > 100 {
			errs = append(errs, fmt.Errorf("%s.discount_percent %d is out of range [0, 100]", prefix, s.DiscountPercent))
		}
		for lang := range s.Title {
			if !lang.IsValid() {
				errs = append(errs, fmt.Errorf("%s.title has unsupported language %q", prefix, lang))
			}
		}
	}

	return errors.Join(errs...)
}
