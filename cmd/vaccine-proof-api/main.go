package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/tjfontaine/vaccine-proof-api/internal/pkg/config"
	"github.com/tjfontaine/vaccine-proof-api/internal/runtime"
	"github.com/tjfontaine/vaccine-proof-api/internal/telemetry"
)

// CLI is the command line of the vaccine-proof API.
type CLI struct {
	Config  string `help:"Path to the YAML config file." default:"config.yaml" type:"path" env:"VPA_CONFIG"`
	EnvFile string `help:"Optional .env file loaded before the config." default:".env" name:"env-file"`

	Serve       ServeCmd       `cmd:"" default:"1" help:"Run the HTTP API (default)."`
	CheckConfig CheckConfigCmd `cmd:"" name:"check-config" help:"Load and validate the config, then exit."`
}

// ServeCmd runs the API until SIGINT or SIGTERM.
type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown." default:"30s"`
	NoTracing       bool          `help:"Disable OpenTelemetry span export."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if !c.NoTracing {
		tp, err := telemetry.InitTracer("vaccine-proof-api", logger)
		if err != nil {
			return fmt.Errorf("initialize tracer: %w", err)
		}
		defer func() {
			if err := telemetry.Shutdown(context.Background(), tp); err != nil {
				logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	app, err := runtime.New(
		runtime.WithLogger(logger),
		runtime.WithLevelVar(level),
		runtime.WithFileConfig(cli.Config),
	)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start app: %w", err)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping")
	case err, ok := <-app.Errors():
		if ok {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return serveErr
}

// CheckConfigCmd validates the config file.
type CheckConfigCmd struct{}

func (c *CheckConfigCmd) Run(cli *CLI) error {
	cfg, err := config.LoadFile(cli.Config)
	if err != nil {
		return err
	}
	fmt.Printf("config ok: port=%d storage=%s revocation=%s\n",
		cfg.Server.Port, cfg.Storage.Type, cfg.Revocation.Source)
	return nil
}

// defaultEnvFile matches the default of CLI.EnvFile.
const defaultEnvFile = ".env"

// envFileFromArgs finds --env-file in args. The env file has to be loaded
// before flags are parsed so it can feed env-bound flags like --config.
func envFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultEnvFile
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load(envFileFromArgs(os.Args[1:]))

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("vaccine-proof-api"),
		kong.Description("Vaccine proof REST API with revocation checks."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
