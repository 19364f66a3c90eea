/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SICQR/hotmess/internal/auth"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin token for the lineup API",
	Long:  "Sign a radio_admin JWT with HOTMESS_JWT_SIGNING_KEY and print it.",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User ID to embed in the token (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if cfg.JWTSigningKey == "" {
		return fmt.Errorf("HOTMESS_JWT_SIGNING_KEY is not set")
	}

	token, err := auth.Issue([]byte(cfg.JWTSigningKey), auth.Claims{
		UserID: tokenUser,
		Roles:  []string{auth.RoleRadioAdmin},
	}, tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
