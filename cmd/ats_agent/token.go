package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-optimizer/internal/server"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API server",
	Long: `Token signs a JWT with the configured secret. The token is printed to stdout and
the user id to stderr, so the output can be captured directly:

  export TOKEN=$(ats_agent token)`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id (a new one is generated when empty)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	jwtConfig, err := cfg.Server.JWT()
	if err != nil {
		return err
	}

	userID := uuid.New()
	if tokenUser != "" {
		userID, err = uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "user: %s\n", userID)
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
