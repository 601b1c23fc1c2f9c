package project

import (
	"context"
	"testing"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChangeIndustryResetsToMandates(t *testing.T) {
	w := NewWizard(nil, nil)
	cfg := domain.DefaultProjectConfig()
	cfg.Compliance = []string{"sox", "made-up"}

	got := w.ChangeIndustry(context.Background(), cfg, "Healthcare")
	assert.Equal(t, "healthcare", got.Industry)
	assert.Equal(t, []string{"hipaa", "hitech", "fda"}, got.Compliance)
	assert.Equal(t, []string{"sox", "made-up"}, cfg.Compliance, "input must not be modified")

	got = w.ChangeIndustry(context.Background(), got, "technology")
	assert.Empty(t, got.Compliance)
	assert.NotNil(t, got.Compliance)

	got = w.ChangeIndustry(context.Background(), got, "")
	assert.Equal(t, "general", got.Industry)
}

func TestApplyRecommendation(t *testing.T) {
	w := NewWizard(nil, nil)
	cfg := domain.DefaultProjectConfig()
	rec := &domain.Recommendation{
		Architecture: "event-driven",
		TechStack:    "golang",
		Database:     "",
		Compliance:   []string{"PCI DSS", "GDPR", "pci"},
	}

	got := w.ApplyRecommendation(context.Background(), cfg, rec, "retail")
	assert.Equal(t, "retail", got.Industry)
	assert.Equal(t, "event-driven", got.ProjectType)
	assert.Equal(t, "golang", got.TechStack)
	assert.Equal(t, "postgresql", got.Database)
	assert.Equal(t, []string{"pci"}, got.Compliance)

	got = w.ApplyRecommendation(context.Background(), cfg, rec, "travel")
	assert.Equal(t, []string{"pci", "gdpr"}, got.Compliance)
}

func TestApplyRecommendationKeepsSelectionWhenNothingResolves(t *testing.T) {
	w := NewWizard(nil, nil)
	cfg := domain.DefaultProjectConfig()
	cfg.Compliance = []string{"iso27001"}

	got := w.ApplyRecommendation(context.Background(), cfg, &domain.Recommendation{Compliance: []string{"GDPR"}}, "")
	assert.Equal(t, "general", got.Industry)
	assert.Equal(t, []string{"iso27001"}, got.Compliance)

	got = w.ApplyRecommendation(context.Background(), cfg, nil, "gaming")
	assert.Equal(t, cfg, got)
}

func TestToggleCompliance(t *testing.T) {
	w := NewWizard(nil, nil)
	cfg := w.ChangeIndustry(context.Background(), domain.DefaultProjectConfig(), "financial")

	got := w.ToggleCompliance(cfg, "SOX")
	assert.Equal(t, []string{"pci", "basel-iii", "glba"}, got.Compliance)

	got = w.ToggleCompliance(got, "Sarbanes-Oxley")
	assert.Equal(t, []string{"sox", "pci", "basel-iii", "glba"}, got.Compliance)

	got = w.ToggleCompliance(got, "EU GDPR")
	assert.Contains(t, got.Compliance, "gdpr")

	assert.Equal(t, got, w.ToggleCompliance(got, "  "))
}

func TestCustomResolver(t *testing.T) {
	r := compliance.NewResolver(compliance.WithExemptIndustries(compliance.IndustryRetail))
	w := NewWizard(func() *compliance.Resolver { return r }, nil)

	got := w.ApplyRecommendation(context.Background(), domain.DefaultProjectConfig(),
		&domain.Recommendation{Compliance: []string{"gdpr"}}, "retail")
	assert.Equal(t, []string{"gdpr"}, got.Compliance)
	assert.Same(t, r, w.Resolver())
}

func TestRepeatedTransitionsAreStable(t *testing.T) {
	w := NewWizard(nil, nil)
	industries := []string{"healthcare", "financial", "travel", "gaming", "retail", "general"}
	labels := []string{"GDPR", "PCI DSS", "HIPAA", "SOX", "made-up", "ISO 27001"}

	rapid.Check(t, func(t *rapid.T) {
		industry := rapid.SampledFrom(industries).Draw(t, "industry")
		recLabels := rapid.SliceOf(rapid.SampledFrom(labels)).Draw(t, "labels")

		rec := &domain.Recommendation{Compliance: recLabels}
		once := w.ApplyRecommendation(context.Background(), domain.DefaultProjectConfig(), rec, industry)

		again := w.ApplyRecommendation(context.Background(), once, &domain.Recommendation{Compliance: once.Compliance}, industry)
		if len(once.Compliance) > 0 && !assert.ObjectsAreEqual(once.Compliance, again.Compliance) {
			t.Fatalf("re-applying resolved compliance changed it: %v then %v", once.Compliance, again.Compliance)
		}
	})
}

func TestObserveSeesEveryResolution(t *testing.T) {
	w := NewWizard(nil, nil)
	var seen []compliance.Resolution
	w.Observe(func(res compliance.Resolution) { seen = append(seen, res) })

	cfg := w.ChangeIndustry(context.Background(), domain.DefaultProjectConfig(), "retail")
	_ = w.ApplyRecommendation(context.Background(), cfg, &domain.Recommendation{Compliance: []string{"GDPR", "PCI"}}, "")

	require.Len(t, seen, 2)
	assert.Equal(t, []compliance.ID{compliance.GDPR}, seen[1].Suppressed)
}
