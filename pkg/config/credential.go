package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// KeyringService is the service name sender credentials are filed under in
// the OS keyring. The keyring user is the sender address.
const KeyringService = "docreminder"

// ResolveCredential fills Mail.Password from the OS keyring when neither the
// config file nor the environment supplied one. A missing keyring entry is
// not an error; Validate reports the absent credential later.
func (c *Config) ResolveCredential(log *zap.SugaredLogger) error {
	if c.Mail.Password != "" || c.Mail.SenderAddress == "" {
		return nil
	}
	secret, err := keyring.Get(KeyringService, c.Mail.SenderAddress)
	if errors.Is(err, keyring.ErrNotFound) {
		log.Debugw("No sender credential in keyring", "sender", c.Mail.SenderAddress)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sender credential from keyring: %w", err)
	}
	log.Debugw("Using sender credential from keyring", "sender", c.Mail.SenderAddress)
	c.Mail.Password = secret
	return nil
}

// StoreCredential saves the sender credential in the OS keyring.
func StoreCredential(sender, secret string) error {
	if sender == "" {
		return errors.New("sender address is required")
	}
	if secret == "" {
		return errors.New("credential must not be empty")
	}
	if err := keyring.Set(KeyringService, sender, secret); err != nil {
		return fmt.Errorf("store sender credential in keyring: %w", err)
	}
	return nil
}

// DeleteCredential removes the sender credential from the OS keyring.
func DeleteCredential(sender string) error {
	if sender == "" {
		return errors.New("sender address is required")
	}
	if err := keyring.Delete(KeyringService, sender); err != nil {
		return fmt.Errorf("delete sender credential from keyring: %w", err)
	}
	return nil
}
