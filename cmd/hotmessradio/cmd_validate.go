/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SICQR/hotmess/internal/schedule"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a lineup file for malformed entries",
	Long:  "Parse a lineup YAML file (or the bundled lineup) and report every entry that would be skipped or could never be on air.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}

	src, err := lineupSource(path)
	if err != nil {
		return err
	}
	shows, err := src.Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	issues := schedule.Validate(shows)
	for _, issue := range issues {
		fmt.Fprintln(out, issue.Error())
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d of %d entries invalid", len(issues), len(shows))
	}

	fmt.Fprintf(out, "%d shows OK\n", len(shows))
	return nil
}
