package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-optimizer/internal/session"
)

var analyzeText string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a résumé and load its sections",
	Long: `Analyze extracts text from a résumé (.txt, .md, .docx or .pdf), asks the model for
an ATS assessment, computes the score locally and replaces the stored section set.
Any pending proposals or tailoring are dropped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Résumé text instead of a file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && analyzeText == "" {
		return errors.New("give a résumé file or --text")
	}
	if len(args) == 1 && analyzeText != "" {
		return errors.New("give either a résumé file or --text, not both")
	}

	return withSession(cmd, func(ctx context.Context, a *app, s *session.Session) error {
		if len(args) == 1 {
			result, err := s.AnalyzeFile(ctx, args[0])
			if err != nil {
				return err
			}
			a.printer.PrintAnalysis(result)
			return nil
		}
		result, err := s.Analyze(ctx, analyzeText)
		if err != nil {
			return err
		}
		a.printer.PrintAnalysis(result)
		return nil
	})
}
