package recommend

import (
	"testing"

	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "architecture": "microservices",
  "techStack": "golang",
  "database": "postgresql",
  "messageQueue": "kafka",
  "caching": "redis",
  "deployment": "kubernetes",
  "compliance": ["PCI DSS", "SOX", "GDPR"],
  "securityLevel": "enterprise",
  "scalingStrategy": "auto-scaling",
  "performanceTargets": {"responseTime": "200ms", "throughput": "1000-rps", "availability": 99.9},
  "testingStrategy": {"unitCoverage": "95%"},
  "additionalRecommendations": ["Use mTLS"],
  "aiInsights": {"complexity": "high", "costEstimate": "$500K-$2M"}
}`

func TestParseRecommendationDirect(t *testing.T) {
	rec, err := ParseRecommendation(validReply)
	require.NoError(t, err)

	assert.Equal(t, "microservices", rec.Architecture)
	assert.Equal(t, "golang", rec.TechStack)
	assert.Equal(t, []string{"PCI DSS", "SOX", "GDPR"}, rec.Compliance)
	assert.Equal(t, "99.9", rec.PerformanceTargets.Availability)
	assert.Equal(t, "95%", rec.TestingStrategy.UnitCoverage)
	assert.Equal(t, []string{"Use mTLS"}, rec.AdditionalRecommendations)
	assert.Equal(t, "high", rec.AIInsights.Complexity)
}

func TestParseRecommendationRecovers(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"fenced", "Here you go:\n```json\n" + validReply + "\n```\nGood luck!"},
		{"bare fence", "```\n" + validReply + "\n```"},
		{"prose around", "Sure. " + validReply + " Let me know."},
		{"trailing commas", `{"architecture": "monolith", "techStack": "java", "database": "mysql", "compliance": ["sox",],}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecommendation(tt.content)
			require.NoError(t, err)
			assert.NotEmpty(t, rec.Architecture)
			assert.NotEmpty(t, rec.Compliance)
		})
	}
}

func TestParseRecommendationCoercesCompliance(t *testing.T) {
	rec, err := ParseRecommendation(`{"architecture":"a","techStack":"b","database":"c","compliance":["HIPAA", 3, null, {"x": 1}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"HIPAA"}, rec.Compliance)

	rec, err = ParseRecommendation(`{"architecture":"a","techStack":"b","database":"c","compliance":"HIPAA"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"HIPAA"}, rec.Compliance)

	rec, err = ParseRecommendation(`{"architecture":"a","techStack":"b","database":"c","compliance":[]}`)
	require.NoError(t, err)
	assert.NotNil(t, rec.Compliance)
	assert.Empty(t, rec.Compliance)
}

func TestParseRecommendationRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "   "},
		{"no json", "I cannot help with that."},
		{"broken json", "{\"architecture\": "},
		{"missing compliance", `{"architecture":"a","techStack":"b","database":"c"}`},
		{"missing database", `{"architecture":"a","techStack":"b","compliance":[]}`},
		{"empty architecture", `{"architecture":"","techStack":"b","database":"c","compliance":[]}`},
		{"compliance wrong type", `{"architecture":"a","techStack":"b","database":"c","compliance":7}`},
		{"array reply", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecommendation(tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidRecommendation)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2]}`, ExtractJSON("```json\n{\"a\": [1, 2,]}\n```"))
	assert.Equal(t, "", ExtractJSON("nothing here"))
}
