package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/OCAP2/armory/internal/campaign"
	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/config"
	"github.com/OCAP2/armory/internal/influx"
	"github.com/OCAP2/armory/internal/logging"
	intOtel "github.com/OCAP2/armory/internal/otel"
	"github.com/OCAP2/armory/internal/quartermaster"
	"github.com/OCAP2/armory/internal/storage"
	"github.com/OCAP2/armory/internal/util"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "armory"
)

// app holds everything a command needs once startup is done.
type app struct {
	logger     *slog.Logger
	slog       *logging.SlogManager
	dbLog      zerolog.Logger
	catalog    *catalog.Catalog
	backend    storage.Backend
	provider   *intOtel.Provider
	ledger     *influx.Manager
	logFile    *os.File
	metricFile *os.File

	sessionStart time.Time
	// current is the campaign being worked on, read by the log context.
	current *campaign.Campaign
}

func main() {
	args := os.Args[1:]
	configDir := "."
	if len(args) >= 2 && (args[0] == "-config" || args[0] == "--config") {
		configDir = util.TrimQuotes(args[1])
		args = args[2:]
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := setup(ctx, configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = a.run(ctx, args[0], args[1:])
	if closeErr := a.close(); closeErr != nil {
		a.logger.Error("Error during shutdown", "error", closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context, configDir string) (*app, error) {
	a := &app{sessionStart: time.Now(), slog: logging.NewSlogManager()}

	// console only until the config tells us where logs go
	a.slog.Setup(logging.Options{Level: "info", Console: os.Stderr})
	a.logger = a.slog.Logger()

	if err := config.Load(configDir); err != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		a.logger.Debug("Loaded config", "dir", configDir)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, AppName, a.sessionStart)
	var err error
	a.logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		a.logger.Error("Failed to create/open log file!", "error", err, "path", logPath)
	}

	a.setupOTel(logsDir)
	a.setupLogging()
	a.dbLog = logging.NewZerolog(fileOrDiscard(a.logFile), viper.GetString("logLevel"), "storage")

	catPath := viper.GetString("catalog.path")
	if catPath == "" {
		a.catalog = catalog.Default()
	} else if a.catalog, err = catalog.Load(catPath); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	a.logger.Info("Catalog loaded", "types", a.catalog.Len(), "path", catPath)

	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		a.ledger = influx.NewManager(logging.NewZerolog(fileOrDiscard(a.logFile), viper.GetString("logLevel"), "ledger"), influxCfg)
		if err := a.ledger.Connect(ctx); err != nil {
			a.logger.Error("Ammo ledger disabled", "error", err)
			a.ledger = nil
		}
	}

	a.backend, err = storage.NewBackend(config.GetStorageConfig(), a.logger, a.dbLog)
	if err != nil {
		return nil, err
	}
	if err := a.backend.Init(); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	a.logger.Info("Storage ready", "type", viper.GetString("storage.type"))
	return a, nil
}

func (a *app) setupOTel(logsDir string) {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return
	}
	metricPath := filepath.Join(logsDir, AppName+".metrics."+a.sessionStart.Format("20060102_150405")+".json")
	f, err := os.Create(metricPath)
	if err != nil {
		a.logger.Error("Failed to create metrics file", "error", err, "path", metricPath)
	} else {
		a.metricFile = f
	}

	cfg := intOtel.Config{
		Enabled:      true,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	}
	if a.logFile != nil {
		cfg.LogWriter = a.logFile
	}
	if a.metricFile != nil {
		cfg.MetricWriter = a.metricFile
	}
	a.provider, err = intOtel.New(cfg)
	if err != nil {
		a.logger.Error("Failed to initialize OTel provider", "error", err)
		a.provider = nil
		return
	}
	a.logger.Info("OTel provider initialized", "metrics", metricPath, "endpoint", otelCfg.Endpoint)
}

func (a *app) setupLogging() {
	opts := logging.Options{
		Level:   viper.GetString("logLevel"),
		Console: os.Stderr,
		Context: logging.DayProvider(func() time.Time {
			if a.current == nil {
				return time.Time{}
			}
			return a.current.Day()
		}),
	}
	if a.logFile != nil {
		opts.File = a.logFile
	}
	var provider *sdklog.LoggerProvider
	if a.provider != nil {
		provider = a.provider.LoggerProvider()
	}
	opts.Provider = provider
	if viper.GetBool("graylog.enabled") {
		w, err := logging.DialGelf(viper.GetString("graylog.address"))
		if err != nil {
			a.logger.Error("Graylog output disabled", "error", err)
		} else {
			opts.Gelf = w
		}
	}
	a.slog.Setup(opts)
	a.logger = a.slog.Logger()
}

func (a *app) campaignDeps() (campaign.Dependencies, error) {
	opts := []quartermaster.Option{quartermaster.WithLogger(a.logger)}
	if a.ledger != nil {
		opts = append(opts, quartermaster.WithLedger(influx.NewLedger(a.ledger)))
	}
	qm, err := quartermaster.New(a.catalog, opts...)
	if err != nil {
		return campaign.Dependencies{}, err
	}
	return campaign.Dependencies{
		Catalog:       a.catalog,
		Quartermaster: qm,
		Logger:        a.logger,
		MaxAttempts:   config.GetRepairConfig().MaxAttemptsPerDay,
	}, nil
}

func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	if a.provider != nil {
		errs = append(errs, a.provider.Shutdown(ctx))
	}
	if a.metricFile != nil {
		errs = append(errs, a.metricFile.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func fileOrDiscard(f *os.File) io.Writer {
	if f == nil {
		return io.Discard
	}
	return f
}
