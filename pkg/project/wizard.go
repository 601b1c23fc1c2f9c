// Package project applies wizard state transitions to a project
// configuration. Each transition re-invokes the compliance resolver
// explicitly; nothing is recomputed implicitly.
package project

import (
	"context"
	"log/slog"
	"strings"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/polisai/archwise/pkg/telemetry"
)

// ResolverFunc returns the resolver to use for the next transition. It lets
// the server swap resolvers on configuration reload.
type ResolverFunc func() *compliance.Resolver

// Wizard applies transitions to project configurations.
type Wizard struct {
	resolver ResolverFunc
	observe  func(compliance.Resolution)
	logger   *slog.Logger
}

// NewWizard creates a wizard. A nil resolver func uses compliance.Default.
func NewWizard(resolver ResolverFunc, logger *slog.Logger) *Wizard {
	if resolver == nil {
		resolver = compliance.Default
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Wizard{resolver: resolver, logger: logger.With("component", "wizard")}
}

// Observe registers fn to be called with every resolution. It must be set
// before the wizard is shared.
func (w *Wizard) Observe(fn func(compliance.Resolution)) { w.observe = fn }

// Resolver returns the resolver currently in effect.
func (w *Wizard) Resolver() *compliance.Resolver { return w.resolver() }

// Resolve runs a resolution, records it and returns the ids.
func (w *Wizard) Resolve(ctx context.Context, labels []string, industry string) compliance.Resolution {
	res := w.resolver().Explain(labels, industry)
	telemetry.RecordResolution(ctx, telemetry.ResolutionMetrics{
		Industry:    string(res.Industry),
		Input:       len(labels),
		Output:      len(res.IDs),
		Added:       len(res.Mandated),
		Suppressed:  len(res.Suppressed),
		Passthrough: len(res.Passthrough),
	})
	if w.observe != nil {
		w.observe(res)
	}
	if len(res.Suppressed) > 0 || len(res.Passthrough) > 0 {
		w.logger.DebugContext(ctx, "compliance resolved",
			"industry", res.Industry,
			"suppressed", res.Suppressed,
			"passthrough", res.Passthrough,
		)
	}
	return res
}

// ChangeIndustry switches the project industry. The compliance selection is
// reset to what the new industry mandates.
func (w *Wizard) ChangeIndustry(ctx context.Context, cfg domain.ProjectConfig, industry string) domain.ProjectConfig {
	cfg = cfg.Clone()
	res := w.Resolve(ctx, nil, industry)
	cfg.Industry = string(res.Industry)
	if cfg.Industry == "" {
		cfg.Industry = string(compliance.IndustryGeneral)
	}
	cfg.Compliance = idStrings(res.IDs)
	return cfg
}

// ApplyRecommendation copies the recommendation's non-empty choices into cfg.
// The industry is taken from the problem description when set. Compliance
// becomes the resolved recommendation labels, unless that resolves to
// nothing, in which case the current selection is kept.
func (w *Wizard) ApplyRecommendation(ctx context.Context, cfg domain.ProjectConfig, rec *domain.Recommendation, problemIndustry string) domain.ProjectConfig {
	cfg = cfg.Clone()
	if rec == nil {
		return cfg
	}

	if ind := compliance.ParseIndustry(problemIndustry); ind != "" {
		cfg.Industry = string(ind)
	}

	setIf(&cfg.ProjectType, rec.Architecture)
	setIf(&cfg.TechStack, rec.TechStack)
	setIf(&cfg.Database, rec.Database)
	setIf(&cfg.MessageQueue, rec.MessageQueue)
	setIf(&cfg.Caching, rec.Caching)
	setIf(&cfg.Deployment, rec.Deployment)
	setIf(&cfg.Monitoring, rec.Monitoring)
	setIf(&cfg.SecurityLevel, rec.SecurityLevel)
	setIf(&cfg.ScalingStrategy, rec.ScalingStrategy)
	setIf(&cfg.DataRetention, rec.DataRetention)

	res := w.Resolve(ctx, rec.Compliance, cfg.Industry)
	if len(res.IDs) > 0 {
		cfg.Compliance = idStrings(res.IDs)
	}
	return cfg
}

// ToggleCompliance flips a single framework in the selection, as a checkbox
// does. The label is normalized but not re-resolved, so users may uncheck a
// mandated framework on purpose.
func (w *Wizard) ToggleCompliance(cfg domain.ProjectConfig, label string) domain.ProjectConfig {
	cfg = cfg.Clone()
	id, _ := compliance.Canonicalize(label)
	if id == "" {
		return cfg
	}

	out := make([]string, 0, len(cfg.Compliance)+1)
	found := false
	for _, existing := range cfg.Compliance {
		if existing == string(id) {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, string(id))
	}
	cfg.Compliance = compliance.NewSet(compliance.IDs(out)...).Strings()
	return cfg
}

func setIf(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func idStrings(ids []compliance.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
