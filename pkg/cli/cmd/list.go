package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/output"
)

func NewListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered documents ordered by expiry date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := rt.Config()
			if err != nil {
				return err
			}
			records, err := document.NewStore(cfg.Store.Path, rt.log).Load()
			if err != nil {
				return err
			}
			sortByExpiry(records)

			views := output.DocumentViews(records, rt.now())
			if status != "" {
				views = slices.DeleteFunc(views, func(v output.DocumentView) bool { return v.Status != status })
			}

			switch format := rt.OutputFormat(); format {
			case output.FormatTable:
				output.WriteDocumentTable(rt.Writer(), views)
				return nil
			case output.FormatWide:
				output.WriteDocumentTableWide(rt.Writer(), views)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, views)
			}
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show documents with this status: ok, due, expired, unknown")

	return cmd
}

// sortByExpiry orders records by expiry date, soonest first. Records with an
// unknown expiry date go last; ties keep their store order.
func sortByExpiry(records []document.Record) {
	slices.SortStableFunc(records, func(a, b document.Record) int {
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return 0
		case a.ExpiryDate == nil:
			return 1
		case b.ExpiryDate == nil:
			return -1
		default:
			return a.ExpiryDate.Compare(*b.ExpiryDate)
		}
	})
}
