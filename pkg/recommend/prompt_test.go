package recommend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProblem() domain.ProblemDescription {
	return domain.ProblemDescription{
		ProjectDescription:   "Payments platform",
		Industry:             "financial",
		UserVolume:           "250,000",
		KeyFeatures:          "card processing, ledgers",
		DataComplexity:       "complex",
		SecurityRequirements: "enterprise",
	}
}

func TestBuildPromptDefault(t *testing.T) {
	prompt, err := BuildPrompt(DefaultTaskTemplate(), sampleProblem())
	require.NoError(t, err)

	assert.Contains(t, prompt, `"projectType": "Payments platform"`)
	assert.Contains(t, prompt, `"expectedUsers": 250000`)
	assert.Contains(t, prompt, `- Financial Services: ["sox", "pci", "basel-iii", "glba"]`)
	assert.Contains(t, prompt, `- Agriculture: ["food-safety", "traceability"]`)
	assert.NotContains(t, prompt, "Additional requirements")
	assert.Contains(t, prompt, "OUTPUT: Return ONLY a valid JSON object")
}

func TestBuildPromptSpecificRequirements(t *testing.T) {
	desc := sampleProblem()
	desc.SpecificRequirements = "Must run on-prem"
	prompt, err := BuildPrompt(DefaultTaskTemplate(), desc)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Additional requirements from the client:\nMust run on-prem")
}

func TestBuildPromptBadTemplate(t *testing.T) {
	_, err := BuildPrompt("{{.Nope", sampleProblem())
	require.Error(t, err)

	_, err = BuildPrompt("{{.Missing}}", sampleProblem())
	require.Error(t, err)
}

func TestLeadingInt(t *testing.T) {
	tests := map[string]int{
		"":         0,
		"10000":    10000,
		"10,000":   10000,
		"10K":      10,
		" 500 ":    500,
		"millions": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, leadingInt(in), in)
	}
}

func TestDefaultSystemPrompt(t *testing.T) {
	system := DefaultSystemPrompt()
	assert.Contains(t, system, "For healthcare: include HIPAA, HITECH, FDA.")
	assert.Contains(t, system, "For financial: include SOX, PCI, BASEL-III, GLBA.")
	assert.Contains(t, system, "unless the project explicitly involves EU data")
	assert.NotContains(t, system, "For technology")
}

func TestLocalPromptProvider(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	system, task, err := NewLocalPromptProvider(dir).GetPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt(), system)
	assert.Equal(t, DefaultTaskTemplate(), task)

	require.NoError(t, os.WriteFile(filepath.Join(dir, SystemPromptFile), []byte("be brief"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TaskTemplateFile), []byte("industry={{.Problem.Industry}}"), 0o600))

	system, task, err = NewLocalPromptProvider(dir).GetPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "be brief", system)

	prompt, err := BuildPrompt(task, sampleProblem())
	require.NoError(t, err)
	assert.Equal(t, "industry=financial", prompt)
}
