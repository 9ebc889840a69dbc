package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telekom/doc-reminder/pkg/config"
)

func NewCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the sender credential in the OS keyring",
	}
	cmd.AddCommand(newCredentialSetCommand(), newCredentialDeleteCommand())
	return cmd
}

func newCredentialSetCommand() *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the sender credential in the OS keyring",
		Long: `Store the SMTP credential for the sender address in the OS keyring.
check uses it whenever EMAIL_PASSWORD is not set. The credential is read
from the first line of standard input.`,
		Example: `  printf '%s\n' "$APP_PASSWORD" | docreminder credential set --sender me@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			addr, err := resolveSender(rt, sender)
			if err != nil {
				return err
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read credential from stdin: %w", err)
			}
			if err := config.StoreCredential(addr, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			rt.log.Infow("Sender credential stored", "sender", addr, "service", config.KeyringService)
			_, _ = fmt.Fprintf(rt.Writer(), "Credential for %s stored in keyring\n", addr)
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Sender address (defaults to the configured EMAIL_ADDRESS)")

	return cmd
}

func newCredentialDeleteCommand() *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the sender credential from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			addr, err := resolveSender(rt, sender)
			if err != nil {
				return err
			}
			if err := config.DeleteCredential(addr); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Credential for %s removed from keyring\n", addr)
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Sender address (defaults to the configured EMAIL_ADDRESS)")

	return cmd
}

func resolveSender(rt *runtimeState, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := rt.Config()
	if err != nil {
		return "", err
	}
	if cfg.Mail.SenderAddress == "" {
		return "", fmt.Errorf("no sender address: pass --sender or set %s", config.EnvSenderAddress)
	}
	return cfg.Mail.SenderAddress, nil
}
