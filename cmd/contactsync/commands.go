package main

import (
	"fmt"

	"github.com/illmade-knight/contact-sync/app"
	"github.com/spf13/cobra"
)

var addFile string

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add every contact from the contact list to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("file") {
			cfg.Source.File = addFile
			cfg.Source.URL = ""
		}
		application, cleanup, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := application.AddAll(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every contact in every container of the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cleanup, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := application.DeleteAll(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Fetch every contact in the store and report the count and time taken",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cleanup, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := application.Search(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Check contact store access, requesting it when needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cleanup, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		granted, err := application.Gate.EnsureAccess(cmd.Context())
		if err != nil {
			return err
		}
		if !granted {
			return app.ErrAccessDenied
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Contact store access granted")
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addFile, "file", "", "contact list JSON file (overrides source.file and source.url)")
}

func printReport(cmd *cobra.Command, report app.Report) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d contacts) Time: %.3f seconds\n",
		report.Operation, report.Description, report.Count, report.Elapsed.Seconds())
	if !report.Success {
		return fmt.Errorf("%s did not complete: %s", report.Operation, report.Description)
	}
	return nil
}
