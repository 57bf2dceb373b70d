package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-optimizer/internal/rendering"
	"github.com/jonathan/ats-optimizer/internal/session"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the current sections to a file",
	Long: `Export renders the current section set as plain text (txt), a flow document
(docx), a fixed-layout document (pdf) or LaTeX source (tex). The output file
defaults to ATS_Optimized_Resume.<ext>.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "Output format: txt, docx, pdf or tex")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := rendering.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = format.Filename()
	}

	return withSession(cmd, func(_ context.Context, _ *app, s *session.Session) error {
		if err := requireResume(s); err != nil {
			return err
		}
		data, err := s.Export(format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
		return nil
	})
}
