package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/server"
	"github.com/jonathan/ats-optimizer/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve exposes sessions over a JSON HTTP API. When a JWT secret is configured
(JWT_SECRET or server.jwt_secret) every request must carry a bearer token and each
user gets a separate session; otherwise all requests share one session.

Endpoints:
  GET    /health                          Health check
  GET    /session                         Session state
  DELETE /session                         Reset the session
  POST   /resume                          Analyze a résumé (JSON text or multipart file)
  PUT    /session/step                    Set the workflow step
  PUT    /sections/{id}                   Edit a section
  POST   /sections/{id}/improve           Request a proposal
  GET    /sections/{id}/proposal          Pending proposal
  POST   /sections/{id}/proposal/apply    Commit a proposal
  DELETE /sections/{id}/proposal          Discard a proposal
  POST   /sections/revise                 Rewrite every section
  POST   /tailor                          Tailor to a job description
  POST   /tailor/apply                    Commit the tailoring
  DELETE /tailor                          Discard the tailoring
  GET    /export/{format}                 Download txt, docx, pdf or tex`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	settings := a.cfg.Server
	if cmd.Flags().Changed("port") {
		settings.Port = servePort
	}

	var jwtService *server.JWTService
	if settings.JWTSecret != "" {
		jwtConfig, err := settings.JWT()
		if err != nil {
			return err
		}
		jwtService = server.NewJWTService(jwtConfig)
	} else {
		a.logger.Warn("JWT_SECRET not set, authentication disabled and all requests share one session")
	}

	manager := session.NewManager(a.newSession, a.logger)
	srv, err := server.New(server.Config{
		Settings:  settings,
		Namespace: a.cfg.Namespace,
		Sessions:  manager,
		Jobs:      a.jobs,
		Extractor: a.extractor,
		JWT:       jwtService,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	a.logger.Info("snapshot store ready", zap.String("namespace", a.cfg.Namespace))
	return srv.Start(ctx)
}
