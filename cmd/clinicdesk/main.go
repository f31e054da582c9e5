package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/atinylittleshell/clinicdesk/internal/config"
	"github.com/atinylittleshell/clinicdesk/internal/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var BUILD_VERSION = "dev"

var ErrNotATerminal = errors.New("intake needs an interactive terminal")

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE, so subcommands can assume it is ready.
type app struct {
	configFile string

	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Registry
}

func main() {
	a := &app{}
	if err := execute(context.Background(), a, newRootCommand(a)); err != nil {
		fmt.Fprintln(os.Stderr, "clinicdesk:", err)
		os.Exit(1)
	}
}

// execute runs root and releases what the command opened, whether it
// succeeded or not.
func execute(ctx context.Context, a *app, root *cobra.Command) (err error) {
	defer func() {
		if closeErr := a.close(); err == nil {
			err = closeErr
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "clinicdesk",
		Short:         "Front desk for a small practice: patient intake and records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runIntake(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ~/.config/clinicdesk/config.yaml)")

	root.AddCommand(
		newIntakeCommand(a),
		newPatientsCommand(a),
		newVersionCommand(),
	)

	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := initializeLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger
	a.logger.Info("-------- new clinicdesk session --------", zap.Strings("args", os.Args))

	reg, err := registry.NewRegistry(cfg.DBPath)
	if err != nil {
		a.logger.Error("failed to open registry", zap.String("path", cfg.DBPath), zap.Error(err))
		return fmt.Errorf("open registry: %w", err)
	}
	a.registry = reg

	return nil
}

func (a *app) close() error {
	var err error
	if a.registry != nil {
		err = a.registry.Close()
		a.registry = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync() // Flush any buffered log entries
	}
	return err
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel := cfg.ZapLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if cfg.CleanLogFile {
		_ = os.Remove(cfg.LogFile)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		cfg.LogFile,
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}
