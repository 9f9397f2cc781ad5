package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aerogate/internal/client"
	"aerogate/internal/models"
	"aerogate/internal/tui"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image>",
	Short: "Verify a face capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capture, err := client.ReadCapture(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		res, err := api.Verify(ctx, capture)
		if err != nil {
			return err
		}
		line := tui.StatusStyle(string(res.Status)).Render(string(res.Status))
		if res.Name != "" && res.Name != models.UnknownName {
			line += " " + res.Name
		}
		line += fmt.Sprintf(" (%.2f%%)", res.Confidence)
		if res.Reason != "" {
			line += " - " + res.Reason
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Run a capture through the scanner screen",
	Long: `scan shows the scanner panel while a capture is verified: awaiting scan,
verifying identity, then the granted or denied screen.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capture, err := client.ReadCapture(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tui.ScanPanel(models.ScanWaiting.Display(), nil))

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		fmt.Fprintln(out, tui.ScanPanel(models.ScanVerifying.Display(), nil))
		res, err := api.Verify(ctx, capture)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, tui.ScanPanel(models.ScanStateFor(res.Status).Display(), &res))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(scanCmd)
}
