package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	EffectConfig struct {
		Duration       float64  `yaml:"duration" validate:"gt=0"`
		Palette        []string `yaml:"palette" validate:"min=1,dive,required"`
		BaseID         string   `yaml:"base_id" validate:"required"`
		KeyframesID    string   `yaml:"keyframes_id" validate:"required,nefield=BaseID"`
		KeyframesScope string   `yaml:"keyframes_scope" validate:"oneof=shared per-count"`
		StylesheetPath string   `yaml:"stylesheet_path" sanitize:"assure_file_access"`
	}

	WidgetConfig struct {
		Selector string   `yaml:"selector" validate:"required"`
		Words    []string `yaml:"words" validate:"dive,required"`
		// Duration of zero means effect duration is used.
		Duration float64 `yaml:"duration,omitempty" validate:"gte=0"`
	}

	DocumentConfig struct {
		// Format of input page, when empty it is derived from file name.
		Format  string         `yaml:"format" validate:"omitempty,oneof=html xhtml"`
		Indent  int            `yaml:"indent" validate:"gte=0,lte=8"`
		Widgets []WidgetConfig `yaml:"widgets" validate:"dive"`
	}

	ScheduleConfig struct {
		PlotHeight int `yaml:"plot_height" validate:"min=2,max=100"`
		PlotWidth  int `yaml:"plot_width" validate:"gte=0,lte=400"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Effect    EffectConfig   `yaml:"effect"`
		Document  DocumentConfig `yaml:"document"`
		Schedule  ScheduleConfig `yaml:"schedule"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

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
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
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
	if cfg == nil {
		return nil, errors.New("configuration is not loaded")
	}
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
