package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brainquiz/internal/app"
	"brainquiz/internal/config"
	"brainquiz/internal/importer"
	transport "brainquiz/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	board := app.NewScoreBoard(b.scores, cfg.Quiz.LeaderboardSize)
	if err := board.Init(ctx); err != nil {
		return err
	}
	questions := app.NewQuestionService(b.questions)
	if err := seedQuestions(ctx, cfg, questions); err != nil {
		return err
	}

	creds := app.NewCredentialService(b.users, app.BcryptHasher{}, cfg.Quiz.Admins)
	if err := provisionAdmins(ctx, cfg, creds); err != nil {
		return err
	}

	sessionTTL := config.Duration(cfg.Server.SessionTTL, 24*time.Hour)
	handler, err := transport.NewHandler(transport.Services{
		Credentials: creds,
		Questions:   questions,
		Quiz:        app.NewQuizService(b.sessions, b.questions, board),
		Moderation:  app.NewModerationService(b.questions, board),
		Scores:      board,
		Sessions:    b.sessions,
	}, transport.Options{
		CookieName: cfg.CookieName(),
		SessionTTL: sessionTTL,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if b.memSessions != nil {
		go sweepSessions(sweepCtx, b, time.Minute)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting quiz server", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	case err := <-serveErr:
		return err
	}

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedQuestions loads the configured CSV when the question table is empty.
func seedQuestions(ctx context.Context, cfg config.Config, questions *app.QuestionService) error {
	if cfg.Quiz.SeedCSV == "" {
		return nil
	}
	n, err := questions.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	report, err := importer.LoadFile(ctx, cfg.Quiz.SeedCSV, questions)
	if err != nil {
		return err
	}
	slog.Info("seeded questions", "file", cfg.Quiz.SeedCSV, "inserted", report.Inserted, "duplicates", report.Duplicates)
	return nil
}

// provisionAdmins creates missing administrator accounts. Without a password
// the admin names stay unclaimed and /admin is unreachable.
func provisionAdmins(ctx context.Context, cfg config.Config, creds *app.CredentialService) error {
	if len(cfg.Quiz.Admins) == 0 {
		return nil
	}
	password := cfg.AdminPassword()
	if password == "" {
		slog.Warn("no admin password configured, admin accounts not created", "admins", cfg.Quiz.Admins)
		return nil
	}
	n, err := creds.ProvisionAdmins(ctx, password)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("created admin accounts", "count", n)
	}
	return nil
}

func sweepSessions(ctx context.Context, b *backends, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.memSessions.Sweep(); n > 0 {
				slog.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
