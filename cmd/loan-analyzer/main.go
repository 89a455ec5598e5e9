package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/loan-analyzer/internal/cache"
	"github.com/iwvelando/loan-analyzer/internal/config"
	"github.com/iwvelando/loan-analyzer/internal/optimizer"
	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/internal/server"
	"github.com/iwvelando/loan-analyzer/internal/store"
	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/optimization"
	"github.com/iwvelando/loan-analyzer/pkg/output"
	"github.com/iwvelando/loan-analyzer/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 30 * time.Second

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	// Schedules go to stdout; keep logs off it.
	cfg.OutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

type cliOptions struct {
	outputFormat   string
	saveScenarios  bool
	fromStore      bool
	optimizeMonths int
}

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of printing schedules")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	saveScenarios := flag.Bool("save-scenarios", false, "persist the configured scenarios to the scenario store")
	fromStore := flag.Bool("from-store", false, "evaluate the scenarios held in the scenario store")
	optimizeMonths := flag.Int("optimize-months", 0, "find the extra payment that pays each loan off within this many months")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		serverConf, err := server.LoadConfig(*serverConfigLocation)
		if err != nil {
			fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
			os.Exit(1)
		}
		logger, err := initializeLogger(serverConf.Logging, *logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = logger.Sync()
		}()

		if err := runServer(ctx, logger, serverConf); err != nil {
			logger.Error("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			_ = logger.Sync()
			os.Exit(1)
		}
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := cliOptions{
		outputFormat:   *outputFormatFlag,
		saveScenarios:  *saveScenarios,
		fromStore:      *fromStore,
		optimizeMonths: *optimizeMonths,
	}
	if err := run(ctx, logger, conf, opts, os.Stdout, os.Stderr); err != nil {
		logger.Error("loan analysis failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// run evaluates the configured (or stored) scenarios and writes them to stdout.
// Optimizer summaries go to stdout for pretty output and to stderr otherwise,
// so csv and json stay machine-readable.
func run(ctx context.Context, logger *zap.Logger, conf *config.Configuration, opts cliOptions, stdout, stderr io.Writer) error {
	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var st *store.Store
	if opts.saveScenarios || opts.fromStore {
		if conf.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set to use the scenario store")
		}
		var err error
		st, err = store.Open(conf.Storage.Path, logger)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	var scenarios []scenario.Scenario
	if !opts.fromStore || opts.saveScenarios {
		portfolio, err := conf.Portfolio()
		if err != nil {
			return fmt.Errorf("invalid scenarios: %w", err)
		}
		scenarios = portfolio.Scenarios()
	}

	if opts.saveScenarios {
		for _, s := range scenarios {
			if _, err := st.Save(ctx, s); err != nil {
				return err
			}
		}
		logger.Info(fmt.Sprintf("saved %d scenarios", len(scenarios)),
			zap.String("op", "main"),
			zap.String("path", conf.Storage.Path),
		)
	}

	if opts.fromStore {
		var err error
		if scenarios, err = st.Scenarios(ctx); err != nil {
			return err
		}
	}

	evaluations, err := scenario.NewEvaluator(logger, conf.Evaluation.Workers).Evaluate(ctx, scenarios)
	if err != nil {
		return fmt.Errorf("failed to compute schedules: %w", err)
	}
	if err := output.Write(stdout, outputFormat, evaluations); err != nil {
		return err
	}

	optimizerConf := conf.Optimizer
	if opts.optimizeMonths > 0 {
		if optimizerConf == nil {
			optimizerConf = &config.OptimizerConfig{}
		}
		optimizerConf.TargetMonths = opts.optimizeMonths
	}
	if optimizerConf == nil {
		return nil
	}

	runner, err := optimizer.NewRunner(logger, *optimizerConf)
	if err != nil {
		return err
	}
	result, err := runner.Run(scenarios)
	if err != nil {
		return fmt.Errorf("failed to optimize extra payments: %w", err)
	}

	var summaries []optimization.Summary
	for _, s := range scenarios {
		summaries = append(summaries, result.Summaries[s.Name]...)
	}
	target := stderr
	if outputFormat == constants.OutputFormatPretty {
		target = stdout
		if _, err := fmt.Fprintln(stdout); err != nil {
			return err
		}
	}
	return output.OptimizationFormat(target, summaries)
}

// runServer serves the HTTP API until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, logger *zap.Logger, conf *server.Config) error {
	backend, err := cache.New(conf.Cache, logger)
	if err != nil {
		return err
	}
	if redisCache, ok := backend.(*cache.RedisCache); ok {
		defer redisCache.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis cache unreachable, schedules will be computed directly",
				zap.String("op", "main.runServer"),
				zap.String("addr", conf.Cache.RedisAddr),
				zap.Error(err),
			)
		}
		cancel()
	}

	var st *store.Store
	if conf.Storage.Path != "" {
		if st, err = store.Open(conf.Storage.Path, logger); err != nil {
			return err
		}
		defer st.Close()
	}

	srv := &http.Server{
		Addr:              conf.Address,
		Handler:           server.NewHandler(logger, conf, server.Dependencies{Cache: backend, Store: st}, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server",
			zap.String("op", "main.runServer"),
			zap.String("address", conf.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server", zap.String("op", "main.runServer"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
