package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the reqspec configuration
type Config struct {
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
	RateLimit       float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second, 0 = unlimited
	RequestIDHeader string            `json:"requestIdHeader,omitempty" yaml:"requestIdHeader,omitempty"`
	Reporters       []string          `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	OutputDir       string            `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	Parallel        *bool             `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Concurrency     int               `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Bail            *bool             `json:"bail,omitempty" yaml:"bail,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	LogLevel        string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	Specs         map[string]SpecConfig         `json:"specs,omitempty" yaml:"specs,omitempty"`
	ResponseSpecs map[string]ResponseSpecConfig `json:"responseSpecs,omitempty" yaml:"responseSpecs,omitempty"`
}

// SpecConfig describes a named request spec. Extends names another spec
// whose settings this one overrides.
type SpecConfig struct {
	Extends     string            `json:"extends,omitempty" yaml:"extends,omitempty"`
	BaseURI     string            `json:"baseUri,omitempty" yaml:"baseUri,omitempty"`
	BasePath    string            `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	ContentType string            `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Log         []string          `json:"log,omitempty" yaml:"log,omitempty"` // request, response, body, curl
}

// ResponseSpecConfig describes a named response expectation.
type ResponseSpecConfig struct {
	Status      int    `json:"status,omitempty" yaml:"status,omitempty"`
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Schema      string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout as a time.Duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	".reqspec.yaml",
	".reqspec.yml",
	"reqspec.config.json",
	".reqspecrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks spec references and numeric ranges.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}
	for name, spec := range c.Specs {
		if spec.Extends == "" {
			continue
		}
		if _, ok := c.Specs[spec.Extends]; !ok {
			return fmt.Errorf("spec %q extends unknown spec %q", name, spec.Extends)
		}
	}
	if _, err := c.SpecOrder(); err != nil {
		return err
	}
	return nil
}

// SpecOrder returns spec names so that every spec comes after the one it
// extends. Names without a parent are sorted alphabetically.
func (c *Config) SpecOrder() ([]string, error) {
	order := make([]string, 0, len(c.Specs))
	state := make(map[string]int, len(c.Specs)) // 1 visiting, 2 done

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case 1:
			return fmt.Errorf("spec %q extends itself through a cycle", name)
		case 2:
			return nil
		}
		state[name] = 1
		if parent := c.Specs[name].Extends; parent != "" {
			if _, ok := c.Specs[parent]; ok {
				if err := visit(parent); err != nil {
					return err
				}
			}
		}
		state[name] = 2
		order = append(order, name)
		return nil
	}

	for _, name := range sortedNames(c.Specs) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func sortedNames(specs map[string]SpecConfig) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.RequestIDHeader != "" {
		result.RequestIDHeader = other.RequestIDHeader
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	result.Headers = mergeMap(c.Headers, other.Headers)

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	if len(other.Specs) > 0 {
		result.Specs = make(map[string]SpecConfig, len(c.Specs)+len(other.Specs))
		for k, v := range c.Specs {
			result.Specs[k] = v
		}
		for k, v := range other.Specs {
			result.Specs[k] = v
		}
	}
	if len(other.ResponseSpecs) > 0 {
		result.ResponseSpecs = make(map[string]ResponseSpecConfig, len(c.ResponseSpecs)+len(other.ResponseSpecs))
		for k, v := range c.ResponseSpecs {
			result.ResponseSpecs[k] = v
		}
		for k, v := range other.ResponseSpecs {
			result.ResponseSpecs[k] = v
		}
	}

	return &result
}

func mergeMap(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// SaveConfig saves the configuration to a file, as YAML or JSON by extension
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
