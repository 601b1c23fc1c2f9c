package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/diagram"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/polisai/archwise/pkg/project"
	"github.com/polisai/archwise/pkg/prompts"
	"github.com/polisai/archwise/pkg/recommend"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// projectFlags describe a project configuration on the command line.
type projectFlags struct {
	Industry     string
	Architecture string
	TechStack    string
	Database     string
	MessageQueue string
	Caching      string
	Deployment   string
	Monitoring   string
}

func (p *projectFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.Industry, "industry", "i", "", "Project industry code")
	f.StringVar(&p.Architecture, "architecture", "", "Architecture style (e.g. microservices)")
	f.StringVar(&p.TechStack, "tech-stack", "", "Primary tech stack")
	f.StringVar(&p.Database, "database", "", "Database")
	f.StringVar(&p.MessageQueue, "queue", "", "Message queue")
	f.StringVar(&p.Caching, "cache", "", "Cache")
	f.StringVar(&p.Deployment, "deployment", "", "Deployment target")
	f.StringVar(&p.Monitoring, "monitoring", "", "Monitoring stack")
}

// build starts from the default configuration, switches to the industry and
// replaces the compliance selection with the resolved labels when any are
// given.
func (p *projectFlags) build(ctx context.Context, w *project.Wizard, labels []string) domain.ProjectConfig {
	cfg := w.ChangeIndustry(ctx, domain.DefaultProjectConfig(), p.Industry)
	cfg = w.ApplyRecommendation(ctx, cfg, p.recommendation(labels), "")
	return cfg
}

func (p *projectFlags) recommendation(labels []string) *domain.Recommendation {
	return &domain.Recommendation{
		Architecture: p.Architecture,
		TechStack:    p.TechStack,
		Database:     p.Database,
		MessageQueue: p.MessageQueue,
		Caching:      p.Caching,
		Deployment:   p.Deployment,
		Monitoring:   p.Monitoring,
		Compliance:   labels,
	}
}

func newWizard(global *globalOptions, cmd *cobra.Command) (*project.Wizard, error) {
	cfg, err := global.loadConfig()
	if err != nil {
		return nil, err
	}
	resolver := cfg.Compliance.Resolver()
	return project.NewWizard(func() *compliance.Resolver { return resolver }, global.logger(cfg, cmd.ErrOrStderr())), nil
}

func newPromptsCmd(global *globalOptions) *cobra.Command {
	var (
		pf       projectFlags
		priority string
	)
	cmd := &cobra.Command{
		Use:   "prompts [labels...]",
		Short: "Render enterprise implementation prompts",
		Long: `Render the implementation prompts for a project. Compliance labels are
resolved against the industry before use.

Example:
  archwise prompts --industry healthcare --priority critical`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWizard(global, cmd)
			if err != nil {
				return err
			}
			cfg := pf.build(cmd.Context(), w, args)

			out, err := prompts.Filter(prompts.Generate(cfg), priority)
			if err != nil {
				return err
			}
			if global.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for i, p := range out {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "## %s (%s)\n\n%s\n", p.Phase, p.Priority, p.Text)
			}
			return nil
		},
	}
	pf.bind(cmd)
	cmd.Flags().StringVarP(&priority, "priority", "p", "all", "Priority filter (all, critical, high)")
	return cmd
}

func newDiagramCmd(global *globalOptions) *cobra.Command {
	var (
		pf   projectFlags
		kind string
	)
	cmd := &cobra.Command{
		Use:   "diagram [labels...]",
		Short: "Render Mermaid architecture diagrams",
		Long: `Render Mermaid diagrams for a project.

Example:
  archwise diagram --industry financial --architecture microservices --database postgresql --type security`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWizard(global, cmd)
			if err != nil {
				return err
			}
			cfg := pf.build(cmd.Context(), w, args)
			rec := &domain.Recommendation{
				Architecture: cfg.ProjectType,
				Database:     cfg.Database,
				MessageQueue: cfg.MessageQueue,
				Caching:      cfg.Caching,
			}
			ids := compliance.IDs(cfg.Compliance)

			var out []diagram.Diagram
			switch strings.ToLower(kind) {
			case "", "all":
				out = diagram.All(rec, cfg)
			case "system":
				out = []diagram.Diagram{diagram.System(rec, cfg.Industry)}
			case "security":
				out = []diagram.Diagram{diagram.Security(ids)}
			case "compliance":
				out = []diagram.Diagram{diagram.Compliance(ids)}
			default:
				return fmt.Errorf("unknown diagram type %q (want all, system, security or compliance)", kind)
			}

			if global.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for i, d := range out {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%%%% %s: %s\n%s", d.Title, d.Description, d.Code)
			}
			return nil
		},
	}
	pf.bind(cmd)
	cmd.Flags().StringVarP(&kind, "type", "t", "all", "Diagram type (all, system, security, compliance)")
	return cmd
}

type recommendOptions struct {
	ProblemFile string
	Problem     domain.ProblemDescription
}

func newRecommendCmd(global *globalOptions) *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask the model for an architecture recommendation",
		Long: `Send a problem description to the configured OpenAI-compatible model once and
print the recommendation with its compliance resolved against the industry.

Flags override fields read from --problem.

Example:
  archwise recommend --industry travel --description "booking platform" \
    --features "search, payments" --complexity moderate --security high`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			problem, err := opts.problem(cmd)
			if err != nil {
				return err
			}
			if err := problem.Validate(); err != nil {
				return err
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			logger := global.logger(cfg, cmd.ErrOrStderr())
			source := recommend.NewOpenAISource(openAIConfig(cfg.LLM), promptProvider(cfg.LLM), logger)
			resolver := cfg.Compliance.Resolver()
			w := project.NewWizard(func() *compliance.Resolver { return resolver }, logger)

			return runRecommend(cmd.Context(), cmd.OutOrStdout(), global.Output, source, w, problem)
		},
	}

	opts.bind(cmd)
	return cmd
}

func (o *recommendOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.ProblemFile, "problem", "f", "", "YAML or JSON file with the problem description")
	f.StringVarP(&o.Problem.Industry, "industry", "i", "", "Project industry code")
	f.StringVarP(&o.Problem.ProjectDescription, "description", "d", "", "Project description")
	f.StringVar(&o.Problem.KeyFeatures, "features", "", "Key features")
	f.StringVar(&o.Problem.DataComplexity, "complexity", "", "Data complexity")
	f.StringVar(&o.Problem.SecurityRequirements, "security", "", "Security requirements")
	f.StringVar(&o.Problem.UserVolume, "users", "", "Expected user volume")
	f.StringVar(&o.Problem.PerformanceNeeds, "performance", "", "Performance needs")
	f.StringVar(&o.Problem.TeamSize, "team-size", "", "Team size")
	f.StringVar(&o.Problem.Timeline, "timeline", "", "Timeline")
	f.StringVar(&o.Problem.Budget, "budget", "", "Budget")
	f.StringSliceVar(&o.Problem.DataTypes, "data-types", nil, "Data types handled")
}

// problem merges the problem file with explicitly set flags.
func (o *recommendOptions) problem(cmd *cobra.Command) (domain.ProblemDescription, error) {
	var out domain.ProblemDescription
	if o.ProblemFile != "" {
		// #nosec G304 -- path comes from the operator
		data, err := os.ReadFile(o.ProblemFile)
		if err != nil {
			return out, fmt.Errorf("failed to read problem file: %w", err)
		}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return out, fmt.Errorf("failed to parse problem file: %w", err)
		}
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("industry", &out.Industry, o.Problem.Industry)
	set("description", &out.ProjectDescription, o.Problem.ProjectDescription)
	set("features", &out.KeyFeatures, o.Problem.KeyFeatures)
	set("complexity", &out.DataComplexity, o.Problem.DataComplexity)
	set("security", &out.SecurityRequirements, o.Problem.SecurityRequirements)
	set("users", &out.UserVolume, o.Problem.UserVolume)
	set("performance", &out.PerformanceNeeds, o.Problem.PerformanceNeeds)
	set("team-size", &out.TeamSize, o.Problem.TeamSize)
	set("timeline", &out.Timeline, o.Problem.Timeline)
	set("budget", &out.Budget, o.Problem.Budget)
	if flags.Changed("data-types") {
		out.DataTypes = o.Problem.DataTypes
	}
	return out, nil
}

type recommendResult struct {
	Recommendation *domain.Recommendation `json:"recommendation"`
	Config         domain.ProjectConfig   `json:"config"`
}

func runRecommend(ctx context.Context, out io.Writer, format string, source recommend.Source, w *project.Wizard, problem domain.ProblemDescription) error {
	rec, err := source.Recommend(ctx, problem)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return errors.New(domainErr.Message)
		}
		return err
	}

	cfg := w.ChangeIndustry(ctx, domain.DefaultProjectConfig(), problem.Industry)
	cfg = w.ApplyRecommendation(ctx, cfg, rec, problem.Industry)

	if format == outputJSON {
		return writeJSON(out, recommendResult{Recommendation: rec, Config: cfg})
	}
	fmt.Fprintf(out, "architecture:  %s\n", rec.Architecture)
	fmt.Fprintf(out, "tech stack:    %s\n", rec.TechStack)
	fmt.Fprintf(out, "database:      %s\n", rec.Database)
	fmt.Fprintf(out, "message queue: %s\n", rec.MessageQueue)
	fmt.Fprintf(out, "caching:       %s\n", rec.Caching)
	fmt.Fprintf(out, "deployment:    %s\n", rec.Deployment)
	fmt.Fprintf(out, "compliance:    %s\n", compliance.JoinLabels(compliance.IDs(cfg.Compliance)))
	if rec.AIInsights.RiskLevel != "" {
		fmt.Fprintf(out, "risk level:    %s\n", rec.AIInsights.RiskLevel)
	}
	return nil
}
