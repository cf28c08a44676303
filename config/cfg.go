package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"

	validator "github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"stylewind/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// SystemTheme selects the theme matching the host color scheme and follows it
// when the scheme changes.
const SystemTheme = "system"

type (
	PolyfillsConfig struct {
		// Rem is the number of device independent pixels in 1rem.
		Rem float64 `yaml:"rem" validate:"gt=0"`
	}

	StyleConfig struct {
		Themes       []string        `yaml:"themes" validate:"min=1,dive,required"`
		ExtraThemes  []string        `yaml:"extra_themes" validate:"dive,required"`
		DefaultTheme string          `yaml:"default_theme" validate:"required"`
		Platform     common.Platform `yaml:"platform" validate:"oneof=ios android web native"`
		Polyfills    PolyfillsConfig `yaml:"polyfills"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Style   StyleConfig   `yaml:"style"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

// AllThemes returns configured themes followed by extra themes, without
// duplicates.
func (s *StyleConfig) AllThemes() []string {
	return lo.Uniq(append(slices.Clone(s.Themes), s.ExtraThemes...))
}

// HasTheme reports whether name is a configured theme.
func (s *StyleConfig) HasTheme(name string) bool {
	return slices.Contains(s.AllThemes(), name)
}

// checkStyle makes sure default theme refers to something we know about.
func checkStyle(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Style.DefaultTheme != SystemTheme && !cfg.Style.HasTheme(cfg.Style.DefaultTheme) {
		sl.ReportError(cfg.Style.DefaultTheme, "DefaultTheme", "default_theme", "theme", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkStyle)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
