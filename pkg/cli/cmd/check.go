package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/mail"
	"github.com/telekom/doc-reminder/pkg/metrics"
	"github.com/telekom/doc-reminder/pkg/output"
	"github.com/telekom/doc-reminder/pkg/scanner"
)

func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Email reminders for documents inside their renewal window",
		Long: `Scan every registered document and email its owner when the expiry date
is within the document's renewal period. Each document is reminded at most
once every 24 hours. Failed reminders are retried by the next check.`,
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
			if err := cfg.ResolveCredential(rt.log); err != nil {
				return err
			}
			if err := cfg.Mail.Validate(); err != nil {
				return err
			}
			if !cfg.Mail.HasCredential() {
				rt.log.Warnw("No sender credential configured, due reminders will fail and be retried by the next check",
					"sender", cfg.Mail.SenderAddress)
			}
			timeout, _ := cfg.Mail.Timeout()
			interval, _ := cfg.Mail.Interval()

			notifier := mail.NewNotifier(rt.newSender(cfg.Mail, rt.log), rt.log, mail.NotifierOptions{
				Timeout:    timeout,
				Interval:   interval,
				SenderName: cfg.Mail.SenderName,
			})
			store := document.NewStore(cfg.Store.Path, rt.log)
			res, err := scanner.New(store, notifier, rt.log).WithClock(rt.now).Check(cmd.Context())

			if path := cfg.Metrics.TextfilePath; path != "" {
				if werr := metrics.WriteTextfile(path); werr != nil {
					rt.log.Warnw("Failed to write metrics textfile", "path", path, "error", werr)
				}
			}
			if err != nil {
				return err
			}

			switch format := rt.OutputFormat(); format {
			case output.FormatTable, output.FormatWide:
				output.WriteCheckReport(rt.Writer(), res)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, res)
			}
		},
	}
	return cmd
}
