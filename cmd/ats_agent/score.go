package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-optimizer/internal/session"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rescore the current sections",
	Long: `Score recomputes the ATS score from the current section content and the findings
of the last analysis. No model call is made.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the résumé, its sections and the stored session",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(resetCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(_ context.Context, _ *app, s *session.Session) error {
		analysis, ok := s.Analysis()
		if !ok {
			return requireResume(s)
		}
		current, err := s.CurrentScore()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Score: %d/100 (analyzed: %d/100)\n", current.OverallScore, analysis.OverallScore)
		fmt.Fprintf(cmd.OutOrStdout(), "Bullets: %d (%d quantified, %d weak verbs)\n",
			current.Metrics.TotalBulletPoints, current.Metrics.BulletsWithMetrics, current.Metrics.WeakVerbsCount)
		return nil
	})
}

func runReset(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, _ *app, s *session.Session) error {
		if err := s.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session reset")
		return nil
	})
}
