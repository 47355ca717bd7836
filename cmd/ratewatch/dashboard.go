package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chiefduck/ratewatch/internal/boot"
	"github.com/chiefduck/ratewatch/internal/dashboard"
)

func dashboardCmd() *cobra.Command {
	var (
		apiURL  string
		token   string
		limit   int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(apiURL) == "" {
				rc, err := boot.ProvideRuntimeConfig(cfg)
				if err != nil {
					return err
				}
				apiURL = dashboard.DefaultAPIBaseURL(rc.ServerAddr)
			}
			if strings.TrimSpace(token) == "" {
				token = os.Getenv("RATEWATCH_TOKEN")
			}
			if strings.TrimSpace(token) == "" {
				return errors.New("--token or RATEWATCH_TOKEN is required")
			}
			if limit <= 0 {
				limit = cfg.Feed.Limit
			}
			client, err := dashboard.NewClient(apiURL, token, timeout)
			if err != nil {
				return err
			}
			return dashboard.Run(cmd.Context(), client, limit)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "dashboard API base url (default from server.addr)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (default $RATEWATCH_TOKEN)")
	cmd.Flags().IntVar(&limit, "limit", 0, "activities to show (default feed.limit)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "HTTP request timeout")
	return cmd
}
