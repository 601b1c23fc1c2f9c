package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/polisai/archwise/pkg/compliance"
)

// ErrPromptNotFound is returned when a prompt file cannot be found.
var ErrPromptNotFound = errors.New("prompt not found")

// Prompt file names read by LocalPromptProvider.
const (
	SystemPromptFile = "system.txt"
	TaskTemplateFile = "task.tmpl"
)

// PromptProvider supplies the system prompt and the task template used to
// build the user prompt.
type PromptProvider interface {
	GetPrompts(ctx context.Context) (system, taskTemplate string, err error)
}

// DefaultPromptProvider serves the built-in prompts.
type DefaultPromptProvider struct{}

// GetPrompts returns the built-in system prompt and task template.
func (DefaultPromptProvider) GetPrompts(context.Context) (string, string, error) {
	return DefaultSystemPrompt(), defaultTaskTemplate, nil
}

// LocalPromptProvider reads prompts from a directory:
//
//	rootDir/
//	  system.txt
//	  task.tmpl
//
// Either file may be absent, in which case the built-in text is used.
type LocalPromptProvider struct {
	rootDir string
}

// NewLocalPromptProvider creates a provider reading from rootDir.
func NewLocalPromptProvider(rootDir string) *LocalPromptProvider {
	return &LocalPromptProvider{rootDir: rootDir}
}

// GetPrompts reads the prompt files, falling back to the built-in text for
// missing files.
func (p *LocalPromptProvider) GetPrompts(ctx context.Context) (string, string, error) {
	system, task, _ := DefaultPromptProvider{}.GetPrompts(ctx)

	if content, err := p.read(SystemPromptFile); err == nil {
		system = content
	} else if !errors.Is(err, ErrPromptNotFound) {
		return "", "", err
	}
	if content, err := p.read(TaskTemplateFile); err == nil {
		task = content
	} else if !errors.Is(err, ErrPromptNotFound) {
		return "", "", err
	}
	return system, task, nil
}

func (p *LocalPromptProvider) read(name string) (string, error) {
	path := filepath.Join(p.rootDir, name)
	// #nosec G304 -- prompts directory is configured by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPromptNotFound, path)
		}
		return "", fmt.Errorf("failed to read prompt %s: %w", path, err)
	}
	return string(data), nil
}

// DefaultSystemPrompt tells the model which frameworks each industry must
// carry. It is derived from the industry mandate table so the two cannot
// drift apart.
func DefaultSystemPrompt() string {
	var hints []string
	for _, ind := range compliance.Industries() {
		if len(ind.Mandatory) == 0 {
			continue
		}
		hints = append(hints, fmt.Sprintf("For %s: include %s.", ind.Code, compliance.JoinLabels(ind.Mandatory)))
	}

	var sb strings.Builder
	sb.WriteString("You are an expert enterprise architect with deep knowledge of software architecture patterns, ")
	sb.WriteString("cloud technologies, security, compliance, and scalability. ")
	sb.WriteString("You MUST provide industry-specific compliance requirements. ")
	sb.WriteString(strings.Join(hints, " "))
	sb.WriteString(" Always prioritize industry-specific compliance over general compliance like GDPR ")
	sb.WriteString("unless the project explicitly involves EU data. ")
	sb.WriteString("Provide detailed, practical recommendations in JSON format.")
	return sb.String()
}
