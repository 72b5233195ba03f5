// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/setools/serename"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the supported game stream profiles.",
	RunE: func(_ *cobra.Command, _ []string) error {
		rows := pterm.TableData{{"Profile", "Signed", "Version", "Wrecker"}}
		for _, p := range serename.Profiles() {
			signed, version := "no", "-"
			if p.Signed != nil {
				signed = "yes"
				version = strconv.Itoa(int(p.Signed.Version))
			}

			wrecker := "no"
			if p.UseWrecker {
				wrecker = "yes"
			}

			rows = append(rows, []string{p.Name, signed, version, wrecker})
		}

		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}
