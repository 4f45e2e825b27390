package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eduflux/internal/server"
)

func newTokenCommand() *cobra.Command {
	var (
		sub   string
		email string
		name  string
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a signed bearer token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("EDUFLUX_JWT_SECRET environment variable is required")
			}

			ttl := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
			token, err := server.GenerateToken(cfg.Auth.JWTSecret, server.Identity{
				ExternalID: sub,
				Email:      email,
				Name:       name,
			}, ttl)
			if err != nil {
				return fmt.Errorf("server.GenerateToken() > %w", err)
			}

			color.Cyan("Bearer token (valid %s):", ttl)
			fmt.Println(token)
			return nil
		},
	}

	flags := tokenCmd.Flags()
	flags.StringVar(&sub, "sub", "", "subject (external student id)")
	flags.StringVar(&email, "email", "", "student email")
	flags.StringVar(&name, "name", "", "student display name")
	_ = tokenCmd.MarkFlagRequired("sub")

	return tokenCmd
}
