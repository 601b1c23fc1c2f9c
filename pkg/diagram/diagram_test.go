package diagram

import (
	"strings"
	"testing"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemMicroservices(t *testing.T) {
	rec := &domain.Recommendation{
		Architecture: "microservices",
		Database:     "postgresql",
		MessageQueue: "kafka",
		Caching:      "redis",
	}

	d := System(rec, "healthcare")
	assert.Equal(t, TypeMermaid, d.Type)
	assert.Equal(t, "System Architecture Overview", d.Title)
	assert.Equal(t, "microservices architecture with postgresql database, redis caching, and kafka messaging", d.Description)

	code := d.Code
	assert.True(t, strings.HasPrefix(code, "graph TB\n"))
	assert.Contains(t, code, "PS[Patient Service]")
	assert.Contains(t, code, "DB[(POSTGRESQL<br/>Database)]")
	assert.Contains(t, code, "CACHE[(REDIS<br/>Cache)]")
	assert.Contains(t, code, "MQ[KAFKA<br/>Message Queue]")
	assert.Contains(t, code, "    LB --> PS\n")
	assert.Contains(t, code, "    BS --> MQ\n")
	assert.Contains(t, code, "    MQ --> NS\n")
	assert.NotContains(t, code, "OS[")
}

func TestSystemMonolithWithoutOptionalStores(t *testing.T) {
	rec := &domain.Recommendation{Architecture: "monolith", Database: "mysql", MessageQueue: "none"}

	code := System(rec, "general").Code
	assert.Contains(t, code, "APP[Application Server]")
	assert.Contains(t, code, "    APP --> DB\n")
	assert.NotContains(t, code, "MQ")
	assert.NotContains(t, code, "CACHE")
	assert.Contains(t, code, "    class APP app\n")
	assert.Contains(t, code, "    class DB data\n")
}

func TestSystemNilRecommendation(t *testing.T) {
	d := System(nil, "")
	assert.Contains(t, d.Code, "APP[Application Server]")
	assert.NotContains(t, d.Code, "Data Layer")
}

func TestSecurityConditionalEdges(t *testing.T) {
	d := Security([]compliance.ID{compliance.HIPAA, compliance.SOX})
	assert.Contains(t, d.Code, "APP -->|PHI Protection| ENCRYPT")
	assert.Contains(t, d.Code, "AUDIT -->|SOX Audit Trail| DB")
	assert.NotContains(t, d.Code, "PCI Compliance")
	assert.Equal(t, "Security layers and controls with SOX, HIPAA compliance", d.Description)

	plain := Security(nil)
	assert.NotContains(t, plain.Code, "PHI Protection")
	assert.Equal(t, "Security layers and controls with no compliance", plain.Description)
}

func TestComplianceConditionalEdges(t *testing.T) {
	tests := []struct {
		id   compliance.ID
		want []string
	}{
		{compliance.GDPR, []string{"CONSENT -->|GDPR Rights| REPORT", "CLASS -->|Data Minimization| ENCRYPT"}},
		{compliance.HIPAA, []string{"CLASS -->|PHI Classification| ENCRYPT", "RBAC -->|Minimum Necessary| DB"}},
		{compliance.PCI, []string{"CLASS -->|Cardholder Data| ENCRYPT"}},
		{compliance.SOX, []string{"AUDIT -->|SOX Controls| TRAIL", "RBAC -->|Segregation of Duties| DB"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			d := Compliance([]compliance.ID{tt.id})
			for _, w := range tt.want {
				assert.Contains(t, d.Code, w)
			}
		})
	}

	base := Compliance(nil).Code
	assert.True(t, strings.HasPrefix(base, "graph TD\n"))
	assert.NotContains(t, base, "|")
}

func TestAll(t *testing.T) {
	cfg := domain.DefaultProjectConfig()
	cfg.Industry = "travel"
	cfg.Compliance = []string{"pci", "gdpr"}

	got := All(&domain.Recommendation{Architecture: "microservices", Database: "postgresql"}, cfg)
	require.Len(t, got, 3)
	assert.Equal(t, "Security Architecture", got[1].Title)
	assert.Contains(t, got[2].Description, "PCI, GDPR")
	assert.Contains(t, got[0].Code, "OS[Order Service]")
}

func TestSubgraphsBalanced(t *testing.T) {
	for _, d := range All(&domain.Recommendation{Architecture: "microservices"}, domain.DefaultProjectConfig()) {
		code := d.Code
		assert.Equal(t, strings.Count(code, "subgraph "), strings.Count(code, "    end\n"), d.Title)
	}
}
