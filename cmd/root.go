// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/directory-sync/pkg/status"
)

var rootCmd = &cobra.Command{
	Use:   "directory-sync",
	Short: "One-way sync of external directory groups into the local user store",
	Long: `directory-sync reconciles the membership of local groups against an
external directory (Microsoft Entra ID or Salesforce), driven by a CSV
mapping table. The external directory is the source of truth, local
membership is rewritten to match it.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the app version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("App Version: %s\n", status.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
