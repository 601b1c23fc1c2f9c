package recommend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// fencedObjectPattern matches a JSON object inside a markdown code block.
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// objectPattern matches the outermost braces, greedily.
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// recommendationSchema lists what a usable reply must contain. Everything
// else is optional and read leniently.
const recommendationSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["architecture", "techStack", "database", "compliance"],
  "properties": {
    "architecture": {"type": "string", "minLength": 1},
    "techStack": {"type": "string", "minLength": 1},
    "database": {"type": "string", "minLength": 1},
    "compliance": {"type": ["array", "string"]}
  }
}`

var compiledSchema = jsonschema.MustCompileString("https://archwise.local/schemas/recommendation.json", recommendationSchema)

// ParseRecommendation decodes a model reply. The reply is parsed directly
// first; failing that, the JSON object is extracted from fences or
// surrounding prose and trailing commas are removed. Errors wrap
// domain.ErrInvalidRecommendation.
func ParseRecommendation(content string) (*domain.Recommendation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrInvalidRecommendation)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		extracted := ExtractJSON(content)
		if extracted == "" {
			return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrInvalidRecommendation)
		}
		raw = nil
		if err := json.Unmarshal([]byte(extracted), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecommendation, err)
		}
	}

	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecommendation, err)
	}

	return fromMap(raw), nil
}

// ExtractJSON pulls a JSON object out of a model reply and removes trailing
// commas. It returns "" when no object is found.
func ExtractJSON(content string) string {
	var candidate string
	if m := fencedObjectPattern.FindStringSubmatch(content); len(m) > 1 {
		candidate = m[1]
	} else {
		candidate = objectPattern.FindString(content)
	}
	if candidate == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(candidate, "$1")
}

func fromMap(raw map[string]any) *domain.Recommendation {
	rec := &domain.Recommendation{
		Architecture:     str(raw, "architecture"),
		TechStack:        str(raw, "techStack"),
		Database:         str(raw, "database"),
		MessageQueue:     str(raw, "messageQueue"),
		Caching:          str(raw, "caching"),
		Deployment:       str(raw, "deployment"),
		Monitoring:       str(raw, "monitoring"),
		Compliance:       compliance.LabelsFrom(raw["compliance"]),
		SecurityLevel:    str(raw, "securityLevel"),
		ScalingStrategy:  str(raw, "scalingStrategy"),
		DataRetention:    str(raw, "dataRetention"),
		BackupStrategy:   str(raw, "backupStrategy"),
		DisasterRecovery: str(raw, "disasterRecovery"),

		AdditionalRecommendations: compliance.LabelsFrom(raw["additionalRecommendations"]),
	}
	if rec.Compliance == nil {
		rec.Compliance = []string{}
	}

	if m, ok := raw["performanceTargets"].(map[string]any); ok {
		rec.PerformanceTargets = domain.PerformanceTargets{
			ResponseTime: str(m, "responseTime"),
			Throughput:   str(m, "throughput"),
			Availability: str(m, "availability"),
		}
	}
	if m, ok := raw["testingStrategy"].(map[string]any); ok {
		rec.TestingStrategy = domain.TestingStrategy{
			UnitCoverage:     str(m, "unitCoverage"),
			IntegrationTests: str(m, "integrationTests"),
			E2ETests:         str(m, "e2eTests"),
			PerformanceTests: str(m, "performanceTests"),
		}
	}
	if m, ok := raw["aiInsights"].(map[string]any); ok {
		rec.AIInsights = domain.Insights{
			Complexity:        str(m, "complexity"),
			RiskLevel:         str(m, "riskLevel"),
			EstimatedTimeline: str(m, "estimatedTimeline"),
			TeamSize:          str(m, "teamSize"),
			CostEstimate:      str(m, "costEstimate"),
		}
	}
	return rec
}

// str reads a scalar as text. Models sometimes answer "availability": 99.9.
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}
