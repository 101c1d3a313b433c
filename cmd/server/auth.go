package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cesargomez89/tubedrums/internal/auth"
	"github.com/cesargomez89/tubedrums/internal/config"
	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/logger"
)

var errOAuthNotConfigured = errors.New("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set")

func newTokenStore(cfg *config.Config, log *logger.Logger) *auth.TokenStore {
	return auth.NewTokenStore(auth.Options{
		ClientID:     cfg.YouTubeClientID,
		ClientSecret: cfg.YouTubeClientSecret,
		RedirectURL:  cfg.OAuthRedirectURI,
		TokenFile:    cfg.TokenFile,
	}, log)
}

func tokenStoreFor(cmd *cobra.Command) (*auth.TokenStore, error) {
	cfg := loadConfig(cmd)
	if !cfg.OAuthConfigured() {
		return nil, errOAuthNotConfigured
	}
	return newTokenStore(cfg, newLogger(cfg)), nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate against the YouTube Data API",
}

var authURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the consent URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := tokenStoreFor(cmd)
		if err != nil {
			return err
		}
		fmt.Println("Visit this URL to authorize read-only access to your playlists:")
		fmt.Println()
		fmt.Println(tokens.AuthCodeURL(uuid.NewString()))
		fmt.Println()
		fmt.Println("Then run: tubedrums auth exchange <code>")
		return nil
	},
}

var authExchangeCmd = &cobra.Command{
	Use:   "exchange <code>",
	Short: "Exchange an authorization code and store the token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := tokenStoreFor(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), constants.DefaultHTTPTimeout)
		defer cancel()
		if err := tokens.Exchange(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Token stored")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authURLCmd)
	authCmd.AddCommand(authExchangeCmd)
}
