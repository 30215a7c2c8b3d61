// Package notify reports finished training runs.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
)

// SMTPNotifier mails a plain-text run summary through an SMTP relay
type SMTPNotifier struct {
	addr       string
	from       string
	recipients []string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(addr, from string, recipients []string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		addr:       addr,
		from:       from,
		recipients: recipients,
		timeout:    30 * time.Second,
		logger:     logger,
	}
}

// NotifyTraining sends the summary of result to every recipient
func (n *SMTPNotifier) NotifyTraining(ctx context.Context, result *core.TrainingResult) error {
	if len(n.recipients) == 0 {
		return fmt.Errorf("no notification recipients configured")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}

	// Set a deadline for the connection
	if err := conn.SetDeadline(time.Now().Add(n.timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(n.from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range n.recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			n.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(n.message(result, time.Now())); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Warn("QUIT command failed", zap.Error(err))
	}

	n.logger.Info("Sent training notification",
		zap.String("run_id", result.RunID),
		zap.Strings("recipients", n.recipients))
	return nil
}

func (n *SMTPNotifier) message(result *core.TrainingResult, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(result))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	for _, line := range strings.Split(Summary(result), "\n") {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.Bytes()
}

// Subject is the one-line outcome of a run
func Subject(result *core.TrainingResult) string {
	switch {
	case result.Err != nil:
		return "[loan-predictor] training run failed"
	case result.Model != nil && result.Model.Accepted:
		return fmt.Sprintf("[loan-predictor] model %s accepted", result.RunID)
	default:
		return fmt.Sprintf("[loan-predictor] model %s rejected", result.RunID)
	}
}

// Summary renders the run details as plain text
func Summary(result *core.TrainingResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "Started: %s\n", result.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", result.Err)
	}
	if t := result.Transformation; t != nil {
		fmt.Fprintf(&b, "Transformer: %s/%s\n", t.Bucket, t.TransformerKey)
	}
	if m := result.Model; m != nil {
		fmt.Fprintf(&b, "Train accuracy: %.4f\n", m.TrainAccuracy)
		fmt.Fprintf(&b, "Test accuracy: %.4f\n", m.TestAccuracy)
		fmt.Fprintf(&b, "Accepted: %t\n", m.Accepted)
	}
	return b.String()
}
