package commands

import (
	"os"

	"github.com/spf13/cobra"

	"santaverse/internal/config"
	"santaverse/internal/observability"
)

var (
	cfg      config.Config
	logLevel string
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "santaverse",
		Short:         "Chat with Santa, take a photo with him, share it to the gallery",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			observability.Setup(os.Stderr, cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override SANTAVERSE_LOG_LEVEL")

	root.AddCommand(serveCmd(), chatCmd(), composeCmd(), galleryCmd())
	return root
}
