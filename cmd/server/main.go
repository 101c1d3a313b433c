package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/tubedrums/internal/config"
)

var version = "dev"

var (
	flagPort         string
	flagDownloadsDir string
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:           "tubedrums",
	Short:         "Download YouTube playlists and serve them as ZIP archives",
	Version:       version,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runServer(cfg)
	},
}

// loadConfig reads the environment and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = flagPort
	}
	if flags.Changed("downloads-dir") {
		cfg.DownloadsDir = flagDownloadsDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPort, "port", "p", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVarP(&flagDownloadsDir, "downloads-dir", "d", "", "download root directory (overrides DOWNLOADS_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
