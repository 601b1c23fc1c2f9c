package recommend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
)

// promptInput is the JSON block embedded in the task prompt.
type promptInput struct {
	ProjectType          string `json:"projectType"`
	Industry             string `json:"industry"`
	ExpectedUsers        int    `json:"expectedUsers"`
	KeyFeatures          string `json:"keyFeatures"`
	DataComplexity       string `json:"dataComplexity"`
	SecurityRequirements string `json:"securityRequirements"`
}

// TemplateData is what task templates are executed against.
type TemplateData struct {
	Problem domain.ProblemDescription
	// InputJSON is the indented JSON summary of the problem.
	InputJSON string
	// ComplianceHints lists industry mandates, one "- Name: [ids]" per line.
	ComplianceHints string
}

const defaultTaskTemplate = `You are an expert enterprise architect. Analyze the following project requirements and generate architecture recommendations.

INPUT (JSON):
{{.InputJSON}}

RULES:
1. For web applications: use monolith if <10K users, microservices if >100K users
2. For mobile apps: use backend-for-frontend pattern
3. For API platforms: use API Gateway pattern
4. For data analytics: use data lake architecture
5. For e-commerce: use event-driven architecture
6. For IoT: use edge computing with MQTT
7. For AI/ML: use ML pipeline architecture

Database selection:
- Simple data: PostgreSQL or MySQL
- Moderate data: PostgreSQL with Redis
- Complex data: MongoDB or distributed PostgreSQL
- Very complex data: multi-database architecture

Scaling strategy:
- <10K users: manual scaling
- 10K-100K users: auto-scaling
- 100K-1M users: microservices scaling
- >1M users: global scaling

Compliance requirements:
{{.ComplianceHints}}
{{- with .Problem.SpecificRequirements}}

Additional requirements from the client:
{{.}}
{{- end}}

OUTPUT: Return ONLY a valid JSON object with this exact structure:
{
  "architecture": "monolith|microservices|event-driven|api-gateway|data-lake|edge-computing|ml-pipeline",
  "techStack": "spring-boot|nodejs|python|golang|dotnet|java",
  "database": "postgresql|mysql|mongodb|distributed-postgresql|multi-database",
  "messageQueue": "kafka",
  "caching": "redis",
  "deployment": "kubernetes",
  "compliance": ["array", "of", "compliance", "frameworks"],
  "securityLevel": "standard|enhanced|enterprise|government",
  "scalingStrategy": "manual-scaling|auto-scaling|microservices-scaling|global-scaling",
  "dataRetention": "7-years",
  "backupStrategy": "daily-incremental-weekly-full",
  "disasterRecovery": "multi-region",
  "performanceTargets": {
    "responseTime": "200ms",
    "throughput": "1000-rps",
    "availability": "99.9%"
  },
  "testingStrategy": {
    "unitCoverage": "95%",
    "integrationTests": "comprehensive",
    "e2eTests": "critical-paths",
    "performanceTests": "load-stress"
  },
  "additionalRecommendations": ["Follow enterprise best practices"],
  "aiInsights": {
    "complexity": "medium",
    "riskLevel": "medium",
    "estimatedTimeline": "6-12 months",
    "teamSize": "8-15 developers",
    "costEstimate": "$500K-$2M"
  }
}`

// DefaultTaskTemplate returns the built-in task template text.
func DefaultTaskTemplate() string { return defaultTaskTemplate }

// BuildPrompt renders the task template for a problem description.
func BuildPrompt(taskTemplate string, desc domain.ProblemDescription) (string, error) {
	tmpl, err := template.New("task").Option("missingkey=error").Parse(taskTemplate)
	if err != nil {
		return "", fmt.Errorf("parse task template: %w", err)
	}

	input, err := json.MarshalIndent(promptInput{
		ProjectType:          desc.ProjectDescription,
		Industry:             desc.Industry,
		ExpectedUsers:        leadingInt(desc.UserVolume),
		KeyFeatures:          desc.KeyFeatures,
		DataComplexity:       desc.DataComplexity,
		SecurityRequirements: desc.SecurityRequirements,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prompt input: %w", err)
	}

	var sb strings.Builder
	err = tmpl.Execute(&sb, TemplateData{
		Problem:         desc,
		InputJSON:       string(input),
		ComplianceHints: complianceHints(),
	})
	if err != nil {
		return "", fmt.Errorf("render task template: %w", err)
	}
	return sb.String(), nil
}

func complianceHints() string {
	var lines []string
	for _, ind := range compliance.Industries() {
		if len(ind.Mandatory) == 0 {
			continue
		}
		quoted := make([]string, len(ind.Mandatory))
		for i, id := range ind.Mandatory {
			quoted[i] = strconv.Quote(string(id))
		}
		lines = append(lines, fmt.Sprintf("- %s: [%s]", ind.Name, strings.Join(quoted, ", ")))
	}
	return strings.Join(lines, "\n")
}

// leadingInt parses the leading digits of s, ignoring thousands separators,
// so "10,000 users" is 10000 and "lots" is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
		case r == ',' || r == '_':
		default:
			return n
		}
	}
	return n
}
