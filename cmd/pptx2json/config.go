package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/VantageDataChat/pptxjson"
)

// Config is the effective configuration of the command line tool, merged
// from defaults, pptx2json.yaml, PPTX2JSON_* environment variables and flags.
type Config struct {
	Concurrency    int    `mapstructure:"concurrency" yaml:"concurrency"`
	RenderMode     string `mapstructure:"render_mode" yaml:"render_mode"`
	LayoutElements bool   `mapstructure:"layout_elements" yaml:"layout_elements"`
	PartCacheSize  int    `mapstructure:"part_cache_size" yaml:"part_cache_size"`

	Log   LogConfig   `mapstructure:"log" yaml:"log"`
	Serve ServeConfig `mapstructure:"serve" yaml:"serve"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ServeConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

const envPrefix = "PPTX2JSON"

// newViper returns a viper instance with the search paths, environment
// binding and defaults of the tool.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("pptx2json")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := pptxjson.DefaultOptions()
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("render_mode", defaults.RenderMode.String())
	v.SetDefault("layout_elements", defaults.LayoutElements)
	v.SetDefault("part_cache_size", defaults.PartCacheSize)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.max_upload_mb", 100)
	return v
}

// loadConfig reads the config file (an explicit path, or pptx2json.yaml in
// the search paths) and decodes the merged settings. A missing file in the
// search paths is not an error; a missing explicit file is.
func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := pptxjson.ParseRenderMode(c.RenderMode); err != nil {
		return fmt.Errorf("invalid render_mode: %w", err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Serve.MaxUploadMB < 1 {
		return fmt.Errorf("serve.max_upload_mb must be at least 1, got %d", c.Serve.MaxUploadMB)
	}
	return nil
}

// options builds conversion options from the config.
func (c *Config) options() *pptxjson.Options {
	mode, _ := pptxjson.ParseRenderMode(c.RenderMode)
	opts := pptxjson.DefaultOptions()
	opts.RenderMode = mode
	opts.LayoutElements = c.LayoutElements
	opts.Concurrency = c.Concurrency
	opts.PartCacheSize = c.PartCacheSize
	opts.Logger = pptxjson.NewLogger(pptxjson.LogConfig{Level: c.Log.Level, Format: c.Log.Format})
	return opts
}
