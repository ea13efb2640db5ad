package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/seatmap-editor/internal/logger"
)

var version = "0.1.0"

// app is the state shared by subcommands once flags are parsed.
type app struct {
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	var logLevel string

	root := &cobra.Command{
		Use:   "seatmapctl",
		Short: "Bulk-edit seat map availability and prices",
		Long: `seatmapctl edits seat map JSON documents with the same engine as the
seat map service: seat range text selects seats, which are made available
and priced, and every other seat can be closed off.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_ = godotenv.Load()
			l, err := logger.New(logLevel, "console", "seatmapctl")
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(a.applyCmd())
	root.AddCommand(a.parseCmd())
	root.AddCommand(a.summaryCmd())
	root.AddCommand(normalizeCmd())
	root.AddCommand(tokenCmd())
	return root
}
