// Package prompts renders the enterprise implementation prompts handed to a
// coding assistant once a wizard session is configured.
package prompts

import (
	"fmt"
	"slices"
	"strings"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
)

// Priority ranks a prompt phase.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
)

// Phase names in generation order.
const (
	PhaseArchitecture  = "Architecture Setup"
	PhaseSecurity      = "Security Implementation"
	PhaseCompliance    = "Compliance Implementation"
	PhaseTesting       = "Testing Framework"
	PhaseCICD          = "CI/CD Pipeline"
	PhaseObservability = "Observability Setup"
	PhaseDocumentation = "Documentation Framework"
)

// Prompt is one implementation phase.
type Prompt struct {
	Phase    string   `json:"phase"`
	Priority Priority `json:"priority"`
	Text     string   `json:"prompt"`
}

// compliancePosition is where the compliance phase is inserted.
const compliancePosition = 2

// Generate returns the prompt phases for cfg. The compliance phase is present
// only when cfg carries at least one framework.
func Generate(cfg domain.ProjectConfig) []Prompt {
	out := []Prompt{
		{
			Phase:    PhaseArchitecture,
			Priority: PriorityCritical,
			Text: fmt.Sprintf(architectureText,
				cfg.ProjectType, cfg.TechStack, cfg.Database, cfg.MessageQueue, cfg.Caching),
		},
		{Phase: PhaseSecurity, Priority: PriorityCritical, Text: securityText},
		{Phase: PhaseTesting, Priority: PriorityHigh, Text: testingText},
		{Phase: PhaseCICD, Priority: PriorityCritical, Text: fmt.Sprintf(cicdText, cfg.Deployment)},
		{Phase: PhaseObservability, Priority: PriorityHigh, Text: fmt.Sprintf(observabilityText, cfg.Monitoring)},
		{Phase: PhaseDocumentation, Priority: PriorityHigh, Text: documentationText},
	}

	if len(cfg.Compliance) == 0 {
		return out
	}

	ids := compliance.IDs(cfg.Compliance)
	phase := Prompt{
		Phase:    PhaseCompliance,
		Priority: PriorityCritical,
		Text:     fmt.Sprintf(complianceText, compliance.JoinLabels(ids), Requirements(ids)),
	}
	return slices.Insert(out, compliancePosition, phase)
}

// Requirements returns the requirement blocks for the frameworks in ids that
// have one, separated by blank lines, in a fixed order.
func Requirements(ids []compliance.ID) string {
	selected := make(map[compliance.ID]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}

	var blocks []string
	for _, r := range requirementBlocks {
		if _, ok := selected[r.id]; ok {
			blocks = append(blocks, r.text)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// Filter keeps the prompts matching priority. An empty priority or "all"
// keeps everything.
func Filter(prompts []Prompt, priority string) ([]Prompt, error) {
	var want Priority
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "", "all":
		return prompts, nil
	case "critical":
		want = PriorityCritical
	case "high":
		want = PriorityHigh
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPriority, priority)
	}

	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.Priority == want {
			out = append(out, p)
		}
	}
	return out, nil
}

// Count returns the number of prompts per priority.
func Count(prompts []Prompt) map[Priority]int {
	counts := map[Priority]int{PriorityCritical: 0, PriorityHigh: 0}
	for _, p := range prompts {
		counts[p.Priority]++
	}
	return counts
}
