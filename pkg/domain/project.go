package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProblemDescription is what a client tells the architect about a project.
type ProblemDescription struct {
	ProjectDescription   string   `json:"projectDescription" yaml:"projectDescription"`
	Industry             string   `json:"industry" yaml:"industry"`
	UserVolume           string   `json:"userVolume,omitempty" yaml:"userVolume,omitempty"`
	DataTypes            []string `json:"dataTypes,omitempty" yaml:"dataTypes,omitempty"`
	KeyFeatures          string   `json:"keyFeatures" yaml:"keyFeatures"`
	DataComplexity       string   `json:"dataComplexity" yaml:"dataComplexity"`
	SecurityRequirements string   `json:"securityRequirements" yaml:"securityRequirements"`
	PerformanceNeeds     string   `json:"performanceNeeds,omitempty" yaml:"performanceNeeds,omitempty"`
	TeamSize             string   `json:"teamSize,omitempty" yaml:"teamSize,omitempty"`
	Timeline             string   `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Budget               string   `json:"budget,omitempty" yaml:"budget,omitempty"`
	SpecificRequirements string   `json:"specificRequirements,omitempty" yaml:"specificRequirements,omitempty"`
}

// Validate checks the fields a recommendation cannot be generated without.
func (p ProblemDescription) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"projectDescription", p.ProjectDescription},
		{"industry", p.Industry},
		{"keyFeatures", p.KeyFeatures},
		{"dataComplexity", p.DataComplexity},
		{"securityRequirements", p.SecurityRequirements},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidProblem, strings.Join(missing, ", "))
	}
	return nil
}

// PerformanceTargets is part of a Recommendation.
type PerformanceTargets struct {
	ResponseTime string `json:"responseTime,omitempty"`
	Throughput   string `json:"throughput,omitempty"`
	Availability string `json:"availability,omitempty"`
}

// TestingStrategy is part of a Recommendation.
type TestingStrategy struct {
	UnitCoverage     string `json:"unitCoverage,omitempty"`
	IntegrationTests string `json:"integrationTests,omitempty"`
	E2ETests         string `json:"e2eTests,omitempty"`
	PerformanceTests string `json:"performanceTests,omitempty"`
}

// Insights is the model's own assessment of the project.
type Insights struct {
	Complexity        string `json:"complexity,omitempty"`
	RiskLevel         string `json:"riskLevel,omitempty"`
	EstimatedTimeline string `json:"estimatedTimeline,omitempty"`
	TeamSize          string `json:"teamSize,omitempty"`
	CostEstimate      string `json:"costEstimate,omitempty"`
}

// Recommendation is an architecture recommendation returned by a model.
// Compliance holds the labels exactly as the model wrote them; they are
// resolved against the project industry before use.
type Recommendation struct {
	Architecture              string             `json:"architecture"`
	TechStack                 string             `json:"techStack"`
	Database                  string             `json:"database"`
	MessageQueue              string             `json:"messageQueue,omitempty"`
	Caching                   string             `json:"caching,omitempty"`
	Deployment                string             `json:"deployment,omitempty"`
	Monitoring                string             `json:"monitoring,omitempty"`
	Compliance                []string           `json:"compliance"`
	SecurityLevel             string             `json:"securityLevel,omitempty"`
	ScalingStrategy           string             `json:"scalingStrategy,omitempty"`
	DataRetention             string             `json:"dataRetention,omitempty"`
	BackupStrategy            string             `json:"backupStrategy,omitempty"`
	DisasterRecovery          string             `json:"disasterRecovery,omitempty"`
	PerformanceTargets        PerformanceTargets `json:"performanceTargets"`
	TestingStrategy           TestingStrategy    `json:"testingStrategy"`
	AdditionalRecommendations []string           `json:"additionalRecommendations,omitempty"`
	AIInsights                Insights           `json:"aiInsights"`
	GeneratedAt               time.Time          `json:"generatedAt"`
}

// Clone returns a deep copy of the recommendation.
func (r *Recommendation) Clone() *Recommendation {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Compliance = cloneStrings(r.Compliance)
	clone.AdditionalRecommendations = cloneStrings(r.AdditionalRecommendations)
	return &clone
}

// ProjectConfig is the configuration the wizard builds up for a project.
// Compliance holds canonical framework ids.
type ProjectConfig struct {
	ProjectName        string   `json:"projectName"`
	ProjectType        string   `json:"projectType"`
	TechStack          string   `json:"techStack"`
	Database           string   `json:"database"`
	MessageQueue       string   `json:"messageQueue"`
	Caching            string   `json:"caching"`
	Monitoring         string   `json:"monitoring"`
	Deployment         string   `json:"deployment"`
	SecurityLevel      string   `json:"securityLevel"`
	ScalingStrategy    string   `json:"scalingStrategy"`
	DataRetention      string   `json:"dataRetention"`
	Compliance         []string `json:"compliance"`
	Industry           string   `json:"industry"`
	DataClassification string   `json:"dataClassification"`
	CustomRequirements string   `json:"customRequirements,omitempty"`
}

// DefaultProjectConfig returns the configuration a new wizard session starts
// from.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		ProjectType:        "microservices",
		TechStack:          "spring-boot",
		Database:           "postgresql",
		MessageQueue:       "kafka",
		Caching:            "redis",
		Monitoring:         "prometheus",
		Deployment:         "kubernetes",
		SecurityLevel:      "standard",
		ScalingStrategy:    "manual-scaling",
		DataRetention:      "3-years",
		Compliance:         []string{},
		Industry:           "general",
		DataClassification: "internal",
	}
}

// Clone returns a deep copy of the configuration.
func (c ProjectConfig) Clone() ProjectConfig {
	c.Compliance = cloneStrings(c.Compliance)
	if c.Compliance == nil {
		c.Compliance = []string{}
	}
	return c
}

// Session is one wizard run: what the client described, what the model
// recommended and the configuration derived from both.
type Session struct {
	ID             string             `json:"id"`
	Problem        ProblemDescription `json:"problem"`
	Config         ProjectConfig      `json:"config"`
	Recommendation *Recommendation    `json:"recommendation,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Problem.DataTypes = cloneStrings(s.Problem.DataTypes)
	clone.Config = s.Config.Clone()
	clone.Recommendation = s.Recommendation.Clone()
	return &clone
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
