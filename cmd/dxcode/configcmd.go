package main

import (
	"fmt"

	"github.com/gofhir/dxcode/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the dxcode configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default configuration file",
		Long:  "Write the built-in defaults as TOML to PATH (default ./" + config.FileName + ").",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.WriteFile(path, config.Default(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pterm.Green("✓ Wrote"), path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), a.cfg)
			}
			return config.Write(cmd.OutOrStdout(), a.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
