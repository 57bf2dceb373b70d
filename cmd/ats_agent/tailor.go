package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-optimizer/internal/fetch"
	"github.com/jonathan/ats-optimizer/internal/session"
)

var (
	tailorJob   string
	tailorURL   string
	tailorText  string
	tailorApply bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Match the résumé against a job description",
	Long: `Tailor scores the résumé against a job description and proposes rewritten
sections. The job description comes from exactly one of --job (file), --job-url
or --job-text. Pass --apply to commit the tailored sections in the same run.`,
	Args: cobra.NoArgs,
	RunE: runTailor,
}

func init() {
	tailorCmd.Flags().StringVar(&tailorJob, "job", "", "Path to a job description file")
	tailorCmd.Flags().StringVar(&tailorURL, "job-url", "", "URL of a job posting")
	tailorCmd.Flags().StringVar(&tailorText, "job-text", "", "Job description text")
	tailorCmd.Flags().BoolVar(&tailorApply, "apply", false, "Commit the tailored sections")
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	source := fetch.JobSource{Text: tailorText, Path: tailorJob, URL: tailorURL}

	return withSession(cmd, func(ctx context.Context, a *app, s *session.Session) error {
		if err := requireResume(s); err != nil {
			return err
		}
		jobText, err := source.Resolve(ctx, a.jobs, a.extractor)
		if err != nil {
			return err
		}

		match, err := s.Tailor(ctx, jobText)
		if err != nil {
			return err
		}
		a.printer.PrintJobMatch(match)
		if !tailorApply {
			return nil
		}

		report, err := s.ApplyTailoring(ctx)
		if err != nil {
			return err
		}
		a.printer.PrintReport("TAILORING APPLIED", report)
		return nil
	})
}
