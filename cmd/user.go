package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up users",
	}
	cmd.AddCommand(newUserLookupCmd())
	return cmd
}

func newUserLookupCmd() *cobra.Command {
	var email, phone string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find the open_id of a user by email or mobile number",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			var (
				openID string
				err    error
			)
			if email != "" {
				openID, err = a.contact.UserIDByEmail(ctx, email)
			} else {
				openID, err = a.contact.UserIDByPhone(ctx, phone)
			}
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(a.out, map[string]string{"open_id": openID})
			}
			fmt.Fprintln(a.out, openID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&phone, "phone", "", "User mobile number")
	cmd.MarkFlagsOneRequired("email", "phone")
	cmd.MarkFlagsMutuallyExclusive("email", "phone")
	return cmd
}
