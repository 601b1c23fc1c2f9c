package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddress)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "archwise", cfg.Telemetry.ServiceName)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, []string{"gdpr"}, cfg.Compliance.RegionalFrameworks)
	assert.Equal(t, []string{"travel", "financial", "healthcare"}, cfg.Compliance.RegionalExemptIndustries)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, time.Minute, cfg.Sessions.CleanupInterval)
	assert.Equal(t, 5, cfg.LLM.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.LLM.Breaker.OpenTimeout)
	assert.Zero(t, cfg.Server.RecommendRateLimit.RequestsPerSecond)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TEST_ARCHWISE_KEY", "sk-test")
	path := writeConfig(t, `
server:
  address: ":8181"
  read_timeout: 5s
  recommend_rate_limit:
    requests_per_second: 0.5
    burst: 3
    trust_forwarded_for: true
logging:
  level: DEBUG
  pretty: true
llm:
  api_key: "${TEST_ARCHWISE_KEY}"
  model: gpt-4o
  timeout: 10s
  breaker:
    max_failures: -1
compliance:
  regional_frameworks: ["GDPR", "California Consumer Privacy Act"]
  regional_exempt_industries: [Travel, financial, healthcare]
sessions:
  ttl: 1h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, -1, cfg.LLM.Breaker.MaxFailures)
	assert.InDelta(t, 0.5, cfg.Server.RecommendRateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, 3, cfg.Server.RecommendRateLimit.Burst)
	assert.True(t, cfg.Server.RecommendRateLimit.TrustForwardedFor)
	assert.Equal(t, []string{"gdpr", "ccpa"}, cfg.Compliance.RegionalFrameworks)
	assert.Equal(t, []string{"travel", "financial", "healthcare"}, cfg.Compliance.RegionalExemptIndustries)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)

	r := cfg.Compliance.Resolver()
	assert.True(t, r.HasTag(compliance.CCPA, compliance.TagRegionalPrivacy))
	assert.Empty(t, r.Resolve([]string{"CCPA"}, "retail"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARCHWISE_ADDR", ":7000")
	t.Setenv("ARCHWISE_LOG_LEVEL", "warn")
	t.Setenv("ARCHWISE_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("ARCHWISE_OTLP_INSECURE", "true")
	t.Setenv("ARCHWISE_LLM_API_KEY", "sk-env")
	t.Setenv("ARCHWISE_LLM_MAX_TOKENS", "512")
	t.Setenv("ARCHWISE_RECOMMEND_RPS", "2")
	t.Setenv("ARCHWISE_REGIONAL_EXEMPT_INDUSTRIES", "travel, financial,healthcare,retail")

	cfg, err := Load(writeConfig(t, "logging:\n  level: error\n"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.InDelta(t, 2.0, cfg.Server.RecommendRateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, []string{"travel", "financial", "healthcare", "retail"}, cfg.Compliance.RegionalExemptIndustries)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad log level", "logging:\n  level: loud\n", "invalid log level"},
		{"address clash", "server:\n  address: \":9000\"\n  metrics_address: \":9000\"\n", "conflicts"},
		{"unknown regional framework", "compliance:\n  regional_frameworks: [made-up]\n", "unknown framework"},
		{"blank exempt industry", "compliance:\n  regional_exempt_industries: [travel, \" \"]\n", "is empty"},
		{"mandate would be suppressed", "compliance:\n  regional_exempt_industries: [financial]\n", "travel mandates gdpr"},
		{"negative rate limit", "server:\n  recommend_rate_limit:\n    requests_per_second: -1\n", "recommend_rate_limit"},
		{"negative tokens", "llm:\n  max_tokens: -1\n", "max_tokens"},
		{"temperature range", "llm:\n  temperature: 3\n", "temperature"},
		{"malformed yaml", "server: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfigInvalid))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEmptyRegionalListDisablesSuppression(t *testing.T) {
	cfg, err := Load(writeConfig(t, "compliance:\n  regional_frameworks: []\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"gdpr"}, cfg.Compliance.Resolver().Resolve([]string{"GDPR"}, "general").Strings())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, DefaultLLMModel, cfg.LLM.Model)
}
