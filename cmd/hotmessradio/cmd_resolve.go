/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SICQR/hotmess/internal/nowplaying"
	"github.com/SICQR/hotmess/internal/schedule"
	"github.com/SICQR/hotmess/internal/source"
)

var (
	resolveFile string
	resolveAt   string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the now/next answer for a moment",
	Long: `Resolve the lineup at a moment and print the now/next response as JSON.

Without --file the bundled default lineup is used. Without --at the current
station time is used.`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveFile, "file", "", "Lineup YAML file (default: bundled lineup)")
	resolveCmd.Flags().StringVar(&resolveAt, "at", "", "RFC3339 timestamp to resolve at (default: now)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	src, err := lineupSource(resolveFile)
	if err != nil {
		return err
	}

	resolver := schedule.NewResolver(cfg.Location)
	at := resolver.Now()
	if resolveAt != "" {
		at, err = time.Parse(time.RFC3339, resolveAt)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	resp := nowplaying.NewService(src, resolver, nil, logger).NowNext(cmd.Context(), at)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// lineupSource returns the file source for path, or the bundled lineup when
// path is empty.
func lineupSource(path string) (source.Source, error) {
	if path != "" {
		return source.NewFile(path), nil
	}
	builtin, err := source.Default()
	if err != nil {
		return nil, fmt.Errorf("load default lineup: %w", err)
	}
	return builtin, nil
}
