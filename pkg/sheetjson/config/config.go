// Package config loads the sync job configuration.
//
// ${VAR} references are expanded in the source, publish and document fields only. Export
// patterns are regular expressions and are used exactly as written.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvSourceToken   = "SHEETJSON_SOURCE_TOKEN"
	EnvSourceBaseURL = "SHEETJSON_SOURCE_BASE_URL"
	EnvPublishBucket = "SHEETJSON_PUBLISH_BUCKET"
	EnvPublishDir    = "SHEETJSON_PUBLISH_DIR"
)

// Publisher kinds.
const (
	PublisherS3   = "s3"
	PublisherFile = "file"
)

const (
	defaultConcurrency = 4
	defaultRateLimit   = 5
	defaultTimeout     = 60 * time.Second
)

// Config is the complete sync job configuration.
type Config struct {
	Source      SourceConfig  `yaml:"source"`
	Publish     PublishConfig `yaml:"publish"`
	Export      ExportConfig  `yaml:"export"`
	Concurrency int           `yaml:"concurrency"`
	Documents   []Document    `yaml:"documents"`
}

// SourceConfig configures the document service client.
type SourceConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Token     string        `yaml:"token"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second
	Timeout   time.Duration `yaml:"timeout"`
}

// PublishConfig selects and configures the publisher.
type PublishConfig struct {
	Kind     string `yaml:"kind"` // "s3" or "file"
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Dir      string `yaml:"dir"`
}

// ExportConfig configures the exporter for every document.
type ExportConfig struct {
	Format string `yaml:"format"`
	Naming string `yaml:"naming"`
	// IgnorePattern applies to both sheet names and column headers.
	IgnorePattern string   `yaml:"ignore_pattern"`
	IgnoreSheets  []string `yaml:"ignore_sheets"`
	IgnoreColumns []string `yaml:"ignore_columns"`
	MaxRows       int      `yaml:"max_rows"`
	Pretty        bool     `yaml:"pretty"`
}

// Document maps one source document to its output key.
type Document struct {
	ID     string `yaml:"id"`
	Output string `yaml:"output"`
}

// LoadEnvFiles loads .env files into the process environment. Missing files are skipped;
// variables already set are kept.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads a YAML config file, expands ${VAR} references from the environment, then
// applies environment overrides and defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load for config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	cfg.expandEnv()
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandEnv() {
	for _, field := range []*string{
		&c.Source.BaseURL, &c.Source.Token,
		&c.Publish.Kind, &c.Publish.Bucket, &c.Publish.Prefix,
		&c.Publish.Region, &c.Publish.Endpoint, &c.Publish.Dir,
	} {
		*field = os.ExpandEnv(*field)
	}
	for i := range c.Documents {
		c.Documents[i].ID = os.ExpandEnv(c.Documents[i].ID)
		c.Documents[i].Output = os.ExpandEnv(c.Documents[i].Output)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSourceToken); v != "" {
		c.Source.Token = v
	}
	if v := os.Getenv(EnvSourceBaseURL); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv(EnvPublishBucket); v != "" {
		c.Publish.Bucket = v
	}
	if v := os.Getenv(EnvPublishDir); v != "" {
		c.Publish.Dir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.Source.RateLimit <= 0 {
		c.Source.RateLimit = defaultRateLimit
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = defaultTimeout
	}
	if c.Publish.Kind == "" {
		c.Publish.Kind = PublisherS3
		if c.Publish.Bucket == "" && c.Publish.Dir != "" {
			c.Publish.Kind = PublisherFile
		}
	}
	if c.Export.Format == "" {
		c.Export.Format = string(sheetjson.FormatObjectBySheetName)
	}
}

// Validate checks the configuration for missing or conflicting settings.
func (c *Config) Validate() error {
	if len(c.Documents) == 0 {
		return errors.New("at least one document is required")
	}
	outputs := make(map[string]string, len(c.Documents))
	for i, d := range c.Documents {
		if d.ID == "" {
			return fmt.Errorf("document %d: id is required", i)
		}
		if d.Output == "" {
			return fmt.Errorf("document %s: output is required", d.ID)
		}
		if other, ok := outputs[d.Output]; ok {
			return fmt.Errorf("documents %s and %s both write %s", other, d.ID, d.Output)
		}
		outputs[d.Output] = d.ID
	}

	switch c.Publish.Kind {
	case PublisherS3:
		if c.Publish.Bucket == "" {
			return fmt.Errorf("publish.bucket is required for the s3 publisher (or set %s)", EnvPublishBucket)
		}
	case PublisherFile:
		if c.Publish.Dir == "" {
			return fmt.Errorf("publish.dir is required for the file publisher (or set %s)", EnvPublishDir)
		}
	default:
		return fmt.Errorf("invalid publish kind '%s', must be one of: s3, file", c.Publish.Kind)
	}

	if _, err := c.Export.Options(nil); err != nil {
		return err
	}
	return nil
}

// Options converts the export settings into exporter options.
func (e ExportConfig) Options(log logrus.FieldLogger) (sheetjson.Options, error) {
	format, err := sheetjson.ParseOutputFormat(e.Format)
	if err != nil {
		return sheetjson.Options{}, err
	}
	naming, err := sheetjson.ParseNamingConvention(e.Naming)
	if err != nil {
		return sheetjson.Options{}, err
	}
	if e.MaxRows < 0 {
		return sheetjson.Options{}, fmt.Errorf("export.max_rows must not be negative")
	}

	opts := sheetjson.Options{
		IgnoreSheetPatterns:  append([]string(nil), e.IgnoreSheets...),
		IgnoreColumnPatterns: append([]string(nil), e.IgnoreColumns...),
		Format:               format,
		Naming:               naming,
		MaxRows:              e.MaxRows,
		Logger:               log,
	}
	if e.IgnorePattern != "" {
		opts.IgnoreSheetPatterns = append(opts.IgnoreSheetPatterns, e.IgnorePattern)
		opts.IgnoreColumnPatterns = append(opts.IgnoreColumnPatterns, e.IgnorePattern)
	}
	if err := opts.Validate(); err != nil {
		return sheetjson.Options{}, err
	}
	return opts, nil
}
