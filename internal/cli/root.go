// Package cli defines the accountsvc command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/cathoderay/accountsvc/internal/config"
	"github.com/cathoderay/accountsvc/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set via ldflags at build time.
var version = "dev"

func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "accountsvc",
		Short:         "Account management HTTP service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("ACCOUNTSVC_CONFIG"), "config file path (TOML)")

	var load loader = func() (*config.Config, *zap.Logger, error) {
		return loadConfig(cfgFile)
	}
	root.AddCommand(newServeCmd(load))
	root.AddCommand(newMigrateCmd(load))
	root.AddCommand(newTokenCmd(load))
	root.AddCommand(newEventsCmd(load))
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "accountsvc: %v\n", err)
		os.Exit(1)
	}
}

type loader func() (*config.Config, *zap.Logger, error)

func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
