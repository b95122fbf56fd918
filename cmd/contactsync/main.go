package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illmade-knight/contact-sync/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	storeBackend string
	logLevel     string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "contactsync",
	Short: "Bulk add and delete contacts in a contact store",
	Long: `contactsync loads a contact list and synchronizes it into a contact store
in batches of fixed size. Each batch is saved atomically; the first failing
batch ends the run and earlier batches stay applied.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store") {
			loaded.Store.Backend = storeBackend
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		l, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (default ./contactsync.toml)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", config.BackendMemory, "contact store backend: memory, sqlite or firestore")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(addCmd, deleteCmd, searchCmd, accessCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
