package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"aerogate/internal/client"
	"aerogate/internal/models"
)

var registerForm client.RegisterForm

var registerCmd = &cobra.Command{
	Use:   "register <image>",
	Short: "Enroll a lounge member",
	Long: `Enroll a lounge member from a face capture.

Examples:
  aerogate register --name "Ada Lovelace" --email ada@example.com \
    --passport AB1234567 --expiry 2030-01-31 ada.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capture, err := client.ReadCapture(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		res, err := api.Register(ctx, registerForm, capture)
		if err != nil {
			return err
		}
		if res.Status != models.RegistrationSuccess {
			return errors.New(res.Reason)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Member registered: %s\n", res.MemberID)
		return nil
	},
}

func init() {
	f := registerCmd.Flags()
	f.StringVar(&registerForm.Name, "name", "", "full name")
	f.StringVar(&registerForm.Email, "email", "", "email address")
	f.StringVar(&registerForm.Passport, "passport", "", "passport number")
	f.StringVar(&registerForm.Expiry, "expiry", "", "membership expiry (YYYY-MM-DD)")
	for _, name := range []string{"name", "email", "passport", "expiry"} {
		_ = registerCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(registerCmd)
}
