package prompts

import (
	"errors"
	"strings"
	"testing"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phases(ps []Prompt) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Phase
	}
	return out
}

func TestGenerateWithoutCompliance(t *testing.T) {
	cfg := domain.DefaultProjectConfig()

	got := Generate(cfg)
	assert.Equal(t, []string{
		PhaseArchitecture, PhaseSecurity, PhaseTesting,
		PhaseCICD, PhaseObservability, PhaseDocumentation,
	}, phases(got))
}

func TestGenerateInsertsCompliancePhase(t *testing.T) {
	cfg := domain.DefaultProjectConfig()
	cfg.Compliance = []string{"sox", "pci", "basel-iii", "glba"}

	got := Generate(cfg)
	require.Len(t, got, 7)
	assert.Equal(t, PhaseCompliance, got[2].Phase)
	assert.Equal(t, PriorityCritical, got[2].Priority)

	text := got[2].Text
	assert.True(t, strings.HasPrefix(text, "Implement comprehensive compliance framework for: SOX, PCI, BASEL-III, GLBA\n"))
	assert.Contains(t, text, "SOX COMPLIANCE REQUIREMENTS:")
	assert.Contains(t, text, "PCI DSS COMPLIANCE REQUIREMENTS:")
	assert.NotContains(t, text, "HIPAA COMPLIANCE REQUIREMENTS:")
	assert.NotContains(t, text, "GDPR COMPLIANCE REQUIREMENTS:")
}

func TestGenerateSplicesConfig(t *testing.T) {
	cfg := domain.DefaultProjectConfig()
	cfg.ProjectType = "event-driven"
	cfg.TechStack = "go"
	cfg.Database = "postgresql"
	cfg.MessageQueue = "nats"
	cfg.Caching = "redis"
	cfg.Deployment = "kubernetes"
	cfg.Monitoring = "prometheus"

	got := Generate(cfg)
	assert.True(t, strings.HasPrefix(got[0].Text, "Create a event-driven architecture using go with enterprise standards:"))
	assert.Contains(t, got[0].Text, "- Implement postgresql database per service pattern")
	assert.Contains(t, got[0].Text, "- Set up nats for asynchronous communication")
	assert.Contains(t, got[0].Text, "- Configure redis for distributed caching")
	assert.True(t, strings.HasPrefix(got[3].Text, "Create enterprise-grade CI/CD pipeline with kubernetes:"))
	assert.True(t, strings.HasPrefix(got[4].Text, "Implement comprehensive observability with prometheus:"))
	for _, p := range got {
		assert.NotContains(t, p.Text, "%!", p.Phase)
	}
}

func TestRequirementsOrder(t *testing.T) {
	got := Requirements([]compliance.ID{compliance.GDPR, compliance.HIPAA, compliance.ISO27001})

	blocks := strings.Split(got, "\n\n")
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "HIPAA"))
	assert.True(t, strings.HasPrefix(blocks[1], "GDPR"))

	assert.Empty(t, Requirements(nil))
}

func TestFilter(t *testing.T) {
	cfg := domain.DefaultProjectConfig()
	cfg.Compliance = []string{"hipaa"}
	all := Generate(cfg)

	tests := []struct {
		priority string
		want     int
	}{
		{"", 7},
		{"all", 7},
		{"critical", 4},
		{"High", 3},
	}
	for _, tt := range tests {
		t.Run(tt.priority, func(t *testing.T) {
			got, err := Filter(all, tt.priority)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	_, err := Filter(all, "urgent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownPriority))
}

func TestCount(t *testing.T) {
	counts := Count(Generate(domain.DefaultProjectConfig()))
	assert.Equal(t, 3, counts[PriorityCritical])
	assert.Equal(t, 3, counts[PriorityHigh])
}
