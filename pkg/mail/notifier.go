package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Reminder is one renewal alert for one document owner.
type Reminder struct {
	To            string
	DocumentName  string
	DaysRemaining int
	ExpiryDate    time.Time
}

// NotificationError wraps any failure while rendering or delivering a
// reminder. Notifier logs it and reports false; it never reaches the caller.
type NotificationError struct {
	Recipient string
	Document  string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("sending reminder for %q to %s: %v", e.Document, e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// NotifierOptions tune a Notifier. Zero values mean a 30s timeout and no
// pacing between sends.
type NotifierOptions struct {
	// Timeout bounds one relay exchange.
	Timeout time.Duration
	// Interval is the minimum time between two relay connections.
	Interval time.Duration
	// SenderName is shown in the reminder footer.
	SenderName string
}

// Notifier turns reminders into rendered emails and hands them to a Sender.
type Notifier struct {
	sender     Sender
	log        *zap.SugaredLogger
	limiter    *rate.Limiter
	timeout    time.Duration
	senderName string
}

func NewNotifier(sender Sender, log *zap.SugaredLogger, opts NotifierOptions) *Notifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Notifier{
		sender:     sender,
		log:        log.Named("notifier"),
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    timeout,
		senderName: opts.SenderName,
	}
}

// Notify renders and sends r. It returns true only when the relay accepted
// the message; every failure is logged as a NotificationError.
func (n *Notifier) Notify(ctx context.Context, r Reminder) bool {
	if err := n.notify(ctx, r); err != nil {
		nerr := &NotificationError{Recipient: r.To, Document: r.DocumentName, Err: err}
		n.log.Errorw("Error sending reminder",
			"document", r.DocumentName,
			"recipient", r.To,
			"host", n.sender.GetHost(),
			"error", nerr)
		return false
	}
	n.log.Infow("Reminder sent",
		"document", r.DocumentName,
		"recipient", r.To,
		"daysRemaining", r.DaysRemaining)
	return true
}

func (n *Notifier) notify(ctx context.Context, r Reminder) error {
	body, err := RenderReminder(ReminderMailParams{
		DocumentName:  r.DocumentName,
		ExpiryDate:    r.ExpiryDate,
		DaysRemaining: r.DaysRemaining,
		SenderName:    n.senderName,
	})
	if err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.sender.Send(ctx, []string{r.To}, ReminderSubject(r.DocumentName), body)
}
