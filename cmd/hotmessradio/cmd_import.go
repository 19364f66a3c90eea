/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SICQR/hotmess/internal/db"
	"github.com/SICQR/hotmess/internal/schedule"
	"github.com/SICQR/hotmess/internal/source"
)

var (
	importFile   string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a lineup file into the database",
	Long: `Replace the show lineup in the content store with the shows from a YAML file.

The import is all or nothing: a file with any invalid entry is rejected.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importFile, "file", "", "Lineup YAML file (required)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without writing")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	shows, err := source.NewFile(importFile).Load(cmd.Context())
	if err != nil {
		return err
	}
	if issues := schedule.Validate(shows); len(issues) > 0 {
		for _, issue := range issues {
			logger.Error().Int("index", issue.Index).Str("title", issue.Title).Err(issue.Err).Msg("invalid show")
		}
		return fmt.Errorf("%d invalid entries, nothing imported", len(issues))
	}

	if importDryRun {
		logger.Info().Int("shows", len(shows)).Msg("dry run: lineup is valid")
		return nil
	}

	database, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close(database)

	count, err := db.NewShowStore(database).ReplaceAll(cmd.Context(), shows)
	if err != nil {
		return fmt.Errorf("import lineup: %w", err)
	}

	logger.Info().Int("shows", count).Str("file", importFile).Msg("lineup imported")
	return nil
}
