package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/revision"
	"github.com/jonathan/ats-optimizer/internal/session"
	"github.com/jonathan/ats-optimizer/internal/types"
)

var (
	improveAll   bool
	improveApply string
	improveLimit int
)

var improveCmd = &cobra.Command{
	Use:   "improve [id]",
	Short: "Propose rewrites for one section or all sections",
	Long: `Improve asks the model for two rewrites of a section: a professional one and an
ATS-optimized one. Proposals are not kept between invocations, so pass --apply to
commit one of them in the same run.

With --all every section is improved, at most --limit requests at a time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImprove,
}

var reviseAllCmd = &cobra.Command{
	Use:   "revise-all",
	Short: "Rewrite every section in one request",
	Long: `Revise-all asks the model to rewrite the whole résumé at once and commits the
result. Sections the model does not return are left unchanged and reported.`,
	Args: cobra.NoArgs,
	RunE: runReviseAll,
}

func init() {
	improveCmd.Flags().BoolVar(&improveAll, "all", false, "Improve every section")
	improveCmd.Flags().StringVar(&improveApply, "apply", "", "Commit a rewrite: professional or ats")
	improveCmd.Flags().IntVar(&improveLimit, "limit", revision.DefaultFanOut, "Maximum concurrent requests with --all")
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(reviseAllCmd)
}

func runImprove(cmd *cobra.Command, args []string) error {
	if improveAll == (len(args) == 1) {
		return errors.New("give a section id or --all")
	}

	var choice types.Choice
	if improveApply != "" {
		c, err := types.ParseChoice(improveApply)
		if err != nil {
			return err
		}
		choice = c
	}

	return withSession(cmd, func(ctx context.Context, a *app, s *session.Session) error {
		if err := requireResume(s); err != nil {
			return err
		}

		var proposals map[string]types.RevisionProposal
		var requestErr error
		if improveAll {
			proposals, requestErr = s.ImproveAll(ctx, nil, improveLimit)
		} else {
			p, err := s.Improve(ctx, args[0])
			if err != nil {
				return err
			}
			proposals = map[string]types.RevisionProposal{args[0]: p}
		}
		if requestErr != nil && len(proposals) == 0 {
			return requestErr
		}
		if requestErr != nil {
			a.logger.Warn("some proposals failed", zap.Error(requestErr))
		}

		// Walk in display order so output is stable.
		for _, sec := range s.Sections() {
			p, ok := proposals[sec.ID]
			if !ok {
				continue
			}
			if choice == "" {
				a.printer.PrintProposal(sec.Title, p)
				continue
			}
			if _, err := s.ApplyProposal(ctx, sec.ID, choice); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s rewrite to %s\n", choice, sec.ID)
		}
		if choice == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Re-run with --apply professional or --apply ats to commit a rewrite.")
		}
		return requestErr
	})
}

func runReviseAll(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, a *app, s *session.Session) error {
		if err := requireResume(s); err != nil {
			return err
		}
		report, err := s.ReviseAll(ctx)
		if err != nil {
			return err
		}
		a.printer.PrintReport("REVISE ALL", report)
		return nil
	})
}
