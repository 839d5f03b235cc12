package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/test-directory-reconciler/internal/config"
)

var (
	cfgFile string

	cfgManager *config.Manager
	logger     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Reconciles the rare disease test directory against the genepanels file",
	Long: `reconciler checks the content of the rare disease test directory against
the lab's authoritative genepanels file, resolving gene symbols through an
HGNC dump and expanding panels through the PanelApp signed-off panel API.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfgManager, err = config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		if err := cfgManager.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		logger = newLogger(cfgManager.GetConfig().Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(newIndicationsCmd)
	rootCmd.AddCommand(presenceCmd)
	rootCmd.AddCommand(serveCmd)
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l
}
