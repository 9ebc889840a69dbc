// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/doc-reminder/pkg/config"
	"github.com/telekom/doc-reminder/pkg/metrics"
)

type Sender interface {
	Send(ctx context.Context, receivers []string, subject, body string) error
	GetHost() string
	GetPort() int
}

// ErrNoCredential is returned by Send when no sender credential is
// configured.
var ErrNoCredential = errors.New("no sender credential configured")

// defaultConfirmWait bounds how long Send keeps waiting for the relay's
// answer to a message that was already being transmitted when ctx ended.
const defaultConfirmWait = 10 * time.Second

type sender struct {
	dialer        *gomail.Dialer
	senderAddress string
	senderName    string
	hasCredential bool
	confirmWait   time.Duration
	log           *zap.SugaredLogger
}

// NewSender returns a Sender that opens one relay connection per message.
// The connection must be encrypted before the credential is sent: port 465
// uses implicit TLS, any other port must offer STARTTLS. A relay that does
// not offer AUTH is rejected.
func NewSender(cfg config.Mail, log *zap.SugaredLogger) Sender {
	log = log.Named("mail")
	log.Infow("Initializing mail sender", "host", cfg.Host, "port", cfg.Port, "user", cfg.User())
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User(), cfg.Password)
	d.Auth = newTLSOnlyAuth(cfg.User(), cfg.Password, cfg.Host)
	if cfg.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for mail TLS connection")
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true} // #nosec G402 -- opt-in for test relays
	}
	senderName := cfg.SenderName
	if senderName == "" {
		senderName = config.DefaultSenderName
	}
	return &sender{
		dialer:        d,
		senderAddress: cfg.SenderAddress,
		senderName:    senderName,
		hasCredential: cfg.Password != "",
		confirmWait:   defaultConfirmWait,
		log:           log,
	}
}

// Send delivers one message. gomail has no per-call deadline, so the relay
// exchange runs in its own goroutine. If ctx ends before the message is
// handed to the relay the connection is closed without sending. If the
// message is already in flight Send waits up to confirmWait for the relay's
// answer and returns that.
func (s *sender) Send(ctx context.Context, receivers []string, subject, body string) error {
	if err := s.send(ctx, receivers, subject, body); err != nil {
		metrics.MailSendFailure.WithLabelValues(s.GetHost()).Inc()
		return err
	}
	metrics.MailSendSuccess.WithLabelValues(s.GetHost()).Inc()
	s.log.Debugw("Mail sent", "receivers", len(receivers), "subject", subject)
	return nil
}

func (s *sender) send(ctx context.Context, receivers []string, subject, body string) error {
	if len(receivers) == 0 {
		return errors.New("cannot send mail with no receivers")
	}
	if !s.hasCredential {
		return ErrNoCredential
	}
	s.log.Debugw("Preparing to send mail", "receivers", len(receivers), "subject", subject)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("To", receivers...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var (
		mu        sync.Mutex
		abandoned bool
		inFlight  bool
	)
	done := make(chan error, 1)
	go func() {
		sc, err := s.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		mu.Lock()
		if abandoned {
			mu.Unlock()
			_ = sc.Close()
			done <- context.Canceled
			return
		}
		inFlight = true
		mu.Unlock()

		err = gomail.Send(sc, msg)
		_ = sc.Close()
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	mu.Lock()
	committed := inFlight
	if !committed {
		abandoned = true
	}
	mu.Unlock()
	if !committed {
		return ctx.Err()
	}

	s.log.Debugw("Context ended during transmission, waiting for relay confirmation", "subject", subject)
	select {
	case err := <-done:
		return err
	case <-time.After(s.confirmWait):
		return fmt.Errorf("relay did not confirm delivery within %s: %w", s.confirmWait, ctx.Err())
	}
}

func (s *sender) GetHost() string {
	return s.dialer.Host
}

func (s *sender) GetPort() int {
	return s.dialer.Port
}
