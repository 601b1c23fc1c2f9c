package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/project"
	"github.com/spf13/cobra"
)

func newResolveCmd(global *globalOptions) *cobra.Command {
	var industry string
	cmd := &cobra.Command{
		Use:   "resolve [labels...]",
		Short: "Resolve compliance labels for an industry",
		Long: `Normalize free-form compliance labels, add what the industry mandates and
apply regional-privacy suppression.

Example:
  archwise resolve --industry retail GDPR "PCI DSS"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			logger := global.logger(cfg, cmd.ErrOrStderr())
			resolver := cfg.Compliance.Resolver()
			wizard := project.NewWizard(func() *compliance.Resolver { return resolver }, logger)

			res := wizard.Resolve(cmd.Context(), args, industry)
			if global.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			for _, id := range res.IDs {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&industry, "industry", "i", "", "Project industry code")
	return cmd
}

func newFrameworksCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "frameworks",
		Short: "List the compliance framework vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			frameworks := cfg.Compliance.Resolver().Frameworks()
			if global.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), frameworks)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTAGS\tDESCRIPTION")
			for _, f := range frameworks {
				tags := make([]string, len(f.Tags))
				for i, t := range f.Tags {
					tags[i] = string(t)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, strings.Join(tags, ","), f.Description)
			}
			return tw.Flush()
		},
	}
}

func newIndustriesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "industries",
		Short: "List industries and the frameworks they mandate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			industries := compliance.Industries()
			if global.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), industries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tMANDATORY")
			for _, ind := range industries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ind.Code, ind.Name, compliance.JoinLabels(ind.Mandatory))
			}
			return tw.Flush()
		},
	}
}
