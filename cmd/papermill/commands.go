package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"papermill/internal/jobs"
)

func newSubmitCommand(apiFlag, configFlag *string) *cobra.Command {
	var conversionType string

	cmd := &cobra.Command{
		Use:   "submit <file>",
		Short: "Upload a document for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := jobs.ParseKind(conversionType)
			if err != nil {
				return fmt.Errorf("invalid --type: use %s or %s", jobs.KindPDFToWord, jobs.KindWordToPDF)
			}
			client, err := newAPIClient(apiFlag, configFlag)
			if err != nil {
				return err
			}
			result, err := client.upload(args[0], string(kind))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", result.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "Conversion ID: %d (status: %s)\n", result.ConversionID, result.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&conversionType, "type", "t", "", "Conversion type (pdf_to_word or word_to_pdf)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newStatusCommand(apiFlag, configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show the status of a conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid conversion id %q", args[0])
			}
			client, err := newAPIClient(apiFlag, configFlag)
			if err != nil {
				return err
			}
			view, err := client.status(id)
			if err != nil {
				return err
			}
			printConversion(cmd, view)
			return nil
		},
	}
}

func newListCommand(apiFlag, configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(apiFlag, configFlag)
			if err != nil {
				return err
			}
			listed, err := client.list()
			if err != nil {
				return err
			}
			if len(listed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions found.")
				return nil
			}
			rows := make([][]string, 0, len(listed))
			for _, view := range listed {
				rows = append(rows, []string{
					strconv.FormatInt(view.ID, 10),
					view.OriginalFilename,
					titleLabel(view.ConversionType),
					titleLabel(view.Status),
					stringOrDash(view.CreatedAt),
					stringOrDash(view.CompletedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "File", "Type", "Status", "Created", "Completed"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newDownloadCommand(apiFlag, configFlag *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a completed conversion artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid conversion id %q", args[0])
			}
			client, err := newAPIClient(apiFlag, configFlag)
			if err != nil {
				return err
			}
			dest, err := client.download(id, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (defaults to the artifact name)")
	return cmd
}

func newHealthCommand(apiFlag, configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show daemon health and job counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(apiFlag, configFlag)
			if err != nil {
				return err
			}
			health, err := client.health()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Status", titleLabel(health.Status)},
				{"Total", strconv.Itoa(health.Total)},
				{"Pending", strconv.Itoa(health.Pending)},
				{"Processing", strconv.Itoa(health.Processing)},
				{"Completed", strconv.Itoa(health.Completed)},
				{"Failed", strconv.Itoa(health.Failed)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func printConversion(cmd *cobra.Command, view *conversionView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Conversion #%d\n", view.ID)
	fmt.Fprintf(out, "  File:      %s\n", view.OriginalFilename)
	fmt.Fprintf(out, "  Type:      %s\n", titleLabel(view.ConversionType))
	fmt.Fprintf(out, "  Status:    %s\n", titleLabel(view.Status))
	fmt.Fprintf(out, "  Created:   %s\n", stringOrDash(view.CreatedAt))
	fmt.Fprintf(out, "  Completed: %s\n", stringOrDash(view.CompletedAt))
	if view.ErrorMessage != nil && strings.TrimSpace(*view.ErrorMessage) != "" {
		fmt.Fprintf(out, "  Error:     %s\n", *view.ErrorMessage)
	}
}

func stringOrDash(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}
	return *value
}
