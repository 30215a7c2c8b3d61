package notify

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikey/loan-predictor/internal/core"
)

type message struct {
	from string
	to   []string
	data string
}

type backend struct {
	mu       sync.Mutex
	messages []message
	reject   string
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{backend: b}, nil
}

type session struct {
	backend *backend
	msg     message
}

func (s *session) Reset()        { s.msg = message{} }
func (s *session) Logout() error { return nil }

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.msg.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	if to == s.backend.reject {
		return &smtp.SMTPError{Code: 550, Message: "no such user"}
	}
	s.msg.to = append(s.msg.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.msg.data = string(data)
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, s.msg)
	s.backend.mu.Unlock()
	return nil
}

func startServer(t *testing.T, be *backend) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })
	return l.Addr().String()
}

func acceptedRun() *core.TrainingResult {
	return &core.TrainingResult{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Transformation: &core.TransformationArtifact{
			Bucket:         "loan-model",
			TransformerKey: "transformation/preprocessing.json",
		},
		Model: &core.ModelArtifact{TrainAccuracy: 0.9, TestAccuracy: 0.85, Accepted: true},
	}
}

func TestSMTPNotifierDelivers(t *testing.T) {
	t.Parallel()

	be := &backend{reject: "nobody@example.com"}
	addr := startServer(t, be)

	obs, logs := observer.New(zapcore.InfoLevel)
	n := NewSMTPNotifier(addr, "predictor@example.com", []string{"ops@example.com", "nobody@example.com"}, zap.New(obs))

	if err := n.NotifyTraining(context.Background(), acceptedRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	be.mu.Lock()
	defer be.mu.Unlock()
	if len(be.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(be.messages))
	}
	msg := be.messages[0]
	if msg.from != "predictor@example.com" || len(msg.to) != 1 || msg.to[0] != "ops@example.com" {
		t.Fatalf("unexpected envelope %+v", msg)
	}
	for _, want := range []string{"Subject: [loan-predictor] model run-1 accepted", "Test accuracy: 0.8500", "Duration: 1.5s"} {
		if !strings.Contains(msg.data, want) {
			t.Fatalf("expected %q in message:\n%s", want, msg.data)
		}
	}
	if logs.FilterMessage("RCPT TO failed for recipient").Len() != 1 {
		t.Fatalf("expected rejected recipient to be logged")
	}
}

func TestSMTPNotifierFailures(t *testing.T) {
	t.Parallel()

	be := &backend{reject: "nobody@example.com"}
	addr := startServer(t, be)

	n := NewSMTPNotifier(addr, "p@example.com", []string{"nobody@example.com"}, zap.NewNop())
	if err := n.NotifyTraining(context.Background(), acceptedRun()); err == nil || !strings.Contains(err.Error(), "all recipients were rejected") {
		t.Fatalf("expected rejection error, got %v", err)
	}

	n = NewSMTPNotifier(addr, "p@example.com", nil, zap.NewNop())
	if err := n.NotifyTraining(context.Background(), acceptedRun()); err == nil {
		t.Fatalf("expected error without recipients")
	}
}

func TestSubjectAndSummary(t *testing.T) {
	t.Parallel()

	failed := &core.TrainingResult{RunID: "run-2", Err: errors.New("boom")}
	if got := Subject(failed); got != "[loan-predictor] training run failed" {
		t.Fatalf("unexpected subject %q", got)
	}
	if !strings.Contains(Summary(failed), "Error: boom") {
		t.Fatalf("summary must include the error")
	}

	rejected := acceptedRun()
	rejected.Model.Accepted = false
	if got := Subject(rejected); got != "[loan-predictor] model run-1 rejected" {
		t.Fatalf("unexpected subject %q", got)
	}

	if err := NewLogNotifier(zap.NewNop()).NotifyTraining(context.Background(), failed); err != nil {
		t.Fatalf("log notifier: %v", err)
	}
}
