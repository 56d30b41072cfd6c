package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IvanTurko/carsite-client-go/auth"
	"github.com/IvanTurko/carsite-client-go/config"
	"github.com/IvanTurko/carsite-client-go/internal/logger"
	"github.com/IvanTurko/carsite-client-go/internal/version"
	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	baseURL string
	timeout time.Duration
	token   string
}

// app is what every subcommand runs against.
type app struct {
	log     *slog.Logger
	svc     *rest.Service
	session *auth.Session
	out     io.Writer

	// wantProfile gates the profile query so only commands that need the
	// profile fetch it.
	wantProfile atomic.Bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:          "carsite",
		Short:        "Command line client for the car site API",
		Version:      version.Get().String(),
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "API base URL (overrides CARSITE_API_BASE_URL)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "request timeout (overrides CARSITE_API_TIMEOUT)")
	cmd.PersistentFlags().StringVar(&flags.token, "token", "", "bearer token (overrides CARSITE_AUTH_TOKEN)")

	cmd.AddCommand(
		newLoginCmd(&flags),
		newRegisterCmd(&flags),
		newMeCmd(&flags),
		newLogoutCmd(&flags),
		newGetCmd(&flags),
	)
	return cmd
}

// newApp loads the environment config, applies flag overrides and builds
// the service and session.
func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	if flags.baseURL != "" {
		cfg.APIBaseURL = flags.baseURL
	}
	if flags.timeout != 0 {
		cfg.APITimeout = flags.timeout
	}
	if flags.token != "" {
		cfg.AuthToken = flags.token
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	opts, err := cfg.ServiceOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		rest.WithLogger(logger.SDK(log.With(slog.String("component", "rest")))),
		rest.WithDefaultHeaders(userAgent()),
	)
	svc, err := rest.NewService(opts...)
	if err != nil {
		return nil, err
	}
	svc.SetAuthToken(cfg.AuthToken)

	a := &app{log: log, svc: svc, out: cmd.OutOrStdout()}
	a.session, err = auth.NewSession(cmd.Context(), svc,
		auth.WithAuthenticated(func() bool { return a.wantProfile.Load() && svc.HasAuthToken() }),
		auth.WithLogger(logger.SDK(log.With(slog.String("component", "auth")))))
	if err != nil {
		return nil, err
	}

	log.Debug("client ready",
		slog.String("base_url", svc.BaseURL()),
		slog.Duration("timeout", svc.Timeout()),
		slog.String("version", version.Get().Version),
	)
	return a, nil
}

func userAgent() http.Header {
	return http.Header{"User-Agent": {fmt.Sprintf("carsite-cli/%s", version.Get().Version)}}
}

func (a *app) close() {
	a.session.Close()
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
