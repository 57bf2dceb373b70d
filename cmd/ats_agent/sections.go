package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-optimizer/internal/session"
	"github.com/jonathan/ats-optimizer/internal/types"
)

var (
	sectionsOriginal bool
	editContent      string
	editFile         string
)

var sectionsCmd = &cobra.Command{
	Use:   "sections [id]",
	Short: "List sections or show one section",
	Long: `Sections lists the current section set. Modified sections are marked with '*'.
With an id it prints that section in full; --original prints the content it had
when the résumé was analyzed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSections,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace the content of one section",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsOriginal, "original", false, "Show the content as first analyzed")
	editCmd.Flags().StringVar(&editContent, "content", "", "New section content")
	editCmd.Flags().StringVar(&editFile, "file", "", "Read the new content from a file")
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(editCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, a *app, s *session.Session) error {
		if len(args) == 0 {
			a.printer.PrintSections(s.Sections())
			return nil
		}
		sec, err := s.Coordinator().Store().Section(args[0])
		if err != nil {
			return err
		}
		if sectionsOriginal {
			sec = types.Section{ID: sec.ID, Title: sec.Title + " (original)", Content: sec.Baseline()}
		}
		a.printer.PrintSection(sec)
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	contentSet := cmd.Flags().Changed("content")
	if contentSet == (editFile != "") {
		return errors.New("give exactly one of --content or --file")
	}

	return withSession(cmd, func(ctx context.Context, a *app, s *session.Session) error {
		if err := requireResume(s); err != nil {
			return err
		}
		content := editContent
		if editFile != "" {
			text, err := a.extractor.Extract(editFile)
			if err != nil {
				return err
			}
			content = text
		}
		if err := s.Edit(ctx, args[0], content); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated section %s\n", args[0])
		return nil
	})
}
