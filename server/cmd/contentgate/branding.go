package main

import (
	"github.com/spf13/cobra"
)

func newBrandingCmd(a *app) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "branding [file|-]",
		Short: "Validate a municipal branding configuration",
		Long: `Validates a branding JSON object. With no argument (or "-") it reads stdin;
an empty input means no branding was supplied, which is valid with a warning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := a.readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			report := a.newValidator().ValidateBrandingJSON(raw)
			if err := writeJSON(cmd.OutOrStdout(), fileReport{File: path, Report: report}, pretty); err != nil {
				return err
			}
			if !report.IsValid {
				return errInvalidContent
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
