package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/intake"
)

func NewAddCommand() *cobra.Command {
	var sub intake.Submission

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a document to be reminded about",
		Example: `  docreminder add --name Passport --email me@example.com --expiry 2027-05-01
  docreminder add --name "Car insurance" --email me@example.com --expiry 2026-12-31 --renewal-days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := rt.Config()
			if err != nil {
				return err
			}
			store := document.NewStore(cfg.Store.Path, rt.log)
			rec, err := intake.New(store, rt.log).Add(cmd.Context(), sub)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Document '%s' added successfully!\n", rec.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.DocumentName, "name", "", "Document name")
	cmd.Flags().StringVar(&sub.OwnerEmail, "email", "", "Email address the reminder is sent to")
	cmd.Flags().StringVar(&sub.ExpiryDate, "expiry", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&sub.RenewalPeriodDays, "renewal-days", intake.DefaultRenewalPeriodDays, "Days before expiry to start sending reminders")

	return cmd
}
