// Package main provides the ats_agent command line: résumé analysis, section
// revision, tailoring, export and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	rootDBURL     string
	rootNamespace string
	rootAPIKey    string
	rootTemplate  string
	rootBrowser   bool
	rootVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "ats_agent",
	Short: "ATS résumé optimizer",
	Long: `ats_agent scores a résumé for applicant tracking systems, splits it into sections,
revises sections with AI assistance without losing your own edits, tailors the résumé
to a job description and exports it as text, DOCX, PDF or LaTeX.

State is kept between invocations in a local SQLite file (or the database named by
--db-url / DATABASE_URL). Configuration can be loaded with --config; environment
variables override the file and flags override both.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a .yaml, .yml or .json config file")
	flags.StringVar(&rootDBURL, "db-url", "", "Snapshot store: postgres:// URL, sqlite:// URL or file path (defaults to DATABASE_URL, then the state file)")
	flags.StringVar(&rootNamespace, "namespace", "", "Session namespace")
	flags.StringVar(&rootAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	flags.StringVarP(&rootTemplate, "template", "t", "", "LaTeX template override for export")
	flags.BoolVar(&rootBrowser, "use-browser", false, "Render script-heavy job pages in headless Chrome")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "Print debug logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
