// Package config provides configuration structures and loading logic for the
// archwise service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Config holds the global configuration for the service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	LLM        LLMConfig        `yaml:"llm"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Sessions   SessionConfig    `yaml:"sessions"`
}

// ServerConfig holds configuration for the HTTP servers.
type ServerConfig struct {
	Address        string        `yaml:"address"`
	MetricsAddress string        `yaml:"metrics_address"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	// RecommendRateLimit caps recommendation requests per client. A zero
	// rate disables the limit.
	RecommendRateLimit RateLimitConfig `yaml:"recommend_rate_limit"`
}

// RateLimitConfig is a token bucket rate.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// TrustForwardedFor keys clients by the last X-Forwarded-For hop. Set it
	// only behind a proxy that appends that header.
	TrustForwardedFor bool `yaml:"trust_forwarded_for"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// TelemetryConfig holds configuration for OpenTelemetry.
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	Environment  string `yaml:"environment"`
	// Headers are sent with every OTLP export, e.g. collector auth.
	Headers map[string]string `yaml:"headers"`
}

// LLMConfig configures the OpenAI-compatible recommendation source.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// PromptsDir optionally overrides the built-in prompts with system.txt and
	// task.tmpl from this directory.
	PromptsDir string `yaml:"prompts_dir"`
	// Breaker stops calling the model after consecutive failures.
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker around the model. MaxFailures
// of zero takes the default; a negative value disables the breaker.
type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// ComplianceConfig holds the regional-privacy policy.
type ComplianceConfig struct {
	RegionalFrameworks       []string `yaml:"regional_frameworks"`
	RegionalExemptIndustries []string `yaml:"regional_exempt_industries"`
}

// SessionConfig controls wizard session expiry.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Defaults.
const (
	DefaultAddress         = ":8080"
	DefaultMetricsAddress  = ":9090"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultServiceName     = "archwise"
	DefaultLLMBaseURL      = "https://api.openai.com/v1"
	DefaultLLMModel        = "gpt-4"
	DefaultMaxTokens       = 2000
	DefaultTemperature     = 0.3
	DefaultLLMTimeout      = 60 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
	DefaultSessionTTL      = 24 * time.Hour
	DefaultCleanupInterval = time.Minute
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	// Validate only fills defaults on an empty config.
	_ = cfg.Validate()
	return cfg
}

// Load reads configuration from a file and applies environment variable
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		//nolint:gosec // Config file path is controlled by the operator
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	cfg, err := Parse(data)
	if err != nil {
		if path != "" {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to parse: %v", domain.ErrConfigInvalid, err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ARCHWISE_ADDR"); val != "" {
		cfg.Server.Address = val
	}
	if val := os.Getenv("ARCHWISE_METRICS_ADDR"); val != "" {
		cfg.Server.MetricsAddress = val
	}

	if val := os.Getenv("ARCHWISE_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("ARCHWISE_LOG_PRETTY"); val == "true" {
		cfg.Logging.Pretty = true
	}

	if val := os.Getenv("ARCHWISE_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("ARCHWISE_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}
	if val := os.Getenv("ARCHWISE_ENVIRONMENT"); val != "" {
		cfg.Telemetry.Environment = val
	}

	if val := os.Getenv("ARCHWISE_LLM_BASE_URL"); val != "" {
		cfg.LLM.BaseURL = val
	}
	if val := os.Getenv("ARCHWISE_LLM_MODEL"); val != "" {
		cfg.LLM.Model = val
	}
	if val := os.Getenv("ARCHWISE_LLM_API_KEY"); val != "" {
		cfg.LLM.APIKey = val
	}
	if val := os.Getenv("ARCHWISE_LLM_MAX_TOKENS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.LLM.MaxTokens = n
		}
	}
	if val := os.Getenv("ARCHWISE_RECOMMEND_RPS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Server.RecommendRateLimit.RequestsPerSecond = f
		}
	}
	if val := os.Getenv("ARCHWISE_PROMPTS_DIR"); val != "" {
		cfg.LLM.PromptsDir = val
	}

	// Comma-separated lists, e.g. "gdpr,ccpa".
	if val, ok := os.LookupEnv("ARCHWISE_REGIONAL_FRAMEWORKS"); ok {
		cfg.Compliance.RegionalFrameworks = splitList(val)
	}
	if val, ok := os.LookupEnv("ARCHWISE_REGIONAL_EXEMPT_INDUSTRIES"); ok {
		cfg.Compliance.RegionalExemptIndustries = splitList(val)
	}

	if val := os.Getenv("ARCHWISE_SESSION_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sessions.TTL = d
		}
	}
}

func splitList(val string) []string {
	out := []string{}
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate performs validation of the entire configuration, filling defaults.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server configuration: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry configuration: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm configuration: %w", err)
	}
	if err := c.Compliance.Validate(); err != nil {
		return fmt.Errorf("compliance configuration: %w", err)
	}
	if err := c.Sessions.Validate(); err != nil {
		return fmt.Errorf("sessions configuration: %w", err)
	}
	return nil
}

// Validate performs validation of server configuration
func (c *ServerConfig) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = DefaultAddress
	}
	if strings.TrimSpace(c.MetricsAddress) == "" {
		c.MetricsAddress = DefaultMetricsAddress
	}
	if c.Address == c.MetricsAddress {
		return fmt.Errorf("metrics_address %q conflicts with address", c.MetricsAddress)
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.RecommendRateLimit.RequestsPerSecond < 0 || c.RecommendRateLimit.Burst < 0 {
		return fmt.Errorf("recommend_rate_limit must not be negative")
	}
	return nil
}

// Validate performs validation of logging configuration
func (c *LoggingConfig) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = "info"
	}

	level := strings.TrimSpace(strings.ToLower(c.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Level = level
		return nil
	default:
		return fmt.Errorf("invalid log level %q, supported levels: debug, info, warn, error", c.Level)
	}
}

// Validate performs validation of telemetry configuration
func (c *TelemetryConfig) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = DefaultServiceName
	}
	return nil
}

// Validate performs validation of the LLM configuration. A missing API key is
// not an error here: the server still resolves compliance without one and
// only the recommendation endpoint fails.
func (c *LLMConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultLLMBaseURL
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultLLMModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultLLMTimeout
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = DefaultBreakerFailures
	}
	if c.Breaker.OpenTimeout <= 0 {
		c.Breaker.OpenTimeout = DefaultBreakerTimeout
	}
	return nil
}

// Validate normalizes the regional policy and rejects one that would drop an
// industry mandate. A nil list means the built-in default; an explicit empty
// list of regional frameworks disables suppression.
func (c *ComplianceConfig) Validate() error {
	if c.RegionalFrameworks == nil {
		c.RegionalFrameworks = []string{string(compliance.GDPR)}
	}
	if c.RegionalExemptIndustries == nil {
		c.RegionalExemptIndustries = make([]string, 0, len(compliance.DefaultRegionalExemptIndustries))
		for _, ind := range compliance.DefaultRegionalExemptIndustries {
			c.RegionalExemptIndustries = append(c.RegionalExemptIndustries, string(ind))
		}
	}

	regional := make([]compliance.ID, 0, len(c.RegionalFrameworks))
	for i, label := range c.RegionalFrameworks {
		id, ok := compliance.Canonicalize(label)
		if !ok {
			return fmt.Errorf("regional_frameworks[%d]: unknown framework %q", i, label)
		}
		c.RegionalFrameworks[i] = string(id)
		regional = append(regional, id)
	}

	exempt := make([]compliance.Industry, 0, len(c.RegionalExemptIndustries))
	for i, code := range c.RegionalExemptIndustries {
		ind := compliance.ParseIndustry(code)
		if ind == "" {
			return fmt.Errorf("regional_exempt_industries[%d] is empty", i)
		}
		c.RegionalExemptIndustries[i] = string(ind)
		exempt = append(exempt, ind)
	}

	return compliance.CheckPolicy(regional, exempt)
}

// Resolver builds the compliance resolver described by the configuration.
// Call it on a validated config.
func (c *ComplianceConfig) Resolver() *compliance.Resolver {
	regional := make([]compliance.ID, len(c.RegionalFrameworks))
	for i, id := range c.RegionalFrameworks {
		regional[i] = compliance.ID(id)
	}
	exempt := make([]compliance.Industry, len(c.RegionalExemptIndustries))
	for i, ind := range c.RegionalExemptIndustries {
		exempt[i] = compliance.Industry(ind)
	}
	return compliance.NewResolver(
		compliance.WithRegionalFrameworks(regional...),
		compliance.WithExemptIndustries(exempt...),
	)
}

// Validate performs validation of session configuration
func (c *SessionConfig) Validate() error {
	if c.TTL <= 0 {
		c.TTL = DefaultSessionTTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	return nil
}
