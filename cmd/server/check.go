package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/tubedrums/internal/fetcher"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration, yt-dlp and YouTube authentication",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Println("configuration: ok")

		path, err := fetcher.CheckInstalled(cfg.YtDlpPath)
		if err != nil {
			return err
		}
		fmt.Printf("yt-dlp: %s\n", path)

		switch {
		case !cfg.OAuthConfigured():
			fmt.Println("youtube auth: not configured")
		case newTokenStore(cfg, newLogger(cfg)).IsAuthenticated():
			fmt.Println("youtube auth: token stored")
		default:
			fmt.Println("youtube auth: configured but no token, run `tubedrums auth url`")
		}

		if cfg.AllowPublicCatalog {
			fmt.Println("public playlists: enabled")
		} else {
			fmt.Println("public playlists: disabled")
		}
		return nil
	},
}
