package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"sync"

	"github.com/foto-parana/contest-service/internal/config"
)

type smtpNotifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

// NewSMTPNotifier sends invitation mail through a plain SMTP relay.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *slog.Logger) Notifier {
	return &smtpNotifier{cfg: cfg, logger: logger}
}

func (n *smtpNotifier) SendInvite(ctx context.Context, to, name, password string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your contest account\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Hello %s,\r\n\r\n"+
			"An account has been created for you on the photo contest platform.\r\n"+
			"Your temporary password is: %s\r\n\r\n"+
			"Please sign in and change it as soon as possible.\r\n",
		n.cfg.From, to, name, password,
	)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send invite mail: %w", err)
	}

	n.logger.Info("Invite mail sent", "to", to)

	return nil
}

// MockNotifier records invites instead of sending them.
type MockNotifier struct {
	mu      sync.Mutex
	invites []MockInvite
	failErr error
}

type MockInvite struct {
	To       string
	Name     string
	Password string
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// FailWith makes every subsequent SendInvite return err.
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MockNotifier) SendInvite(ctx context.Context, to, name, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.invites = append(m.invites, MockInvite{To: to, Name: name, Password: password})
	return nil
}

func (m *MockNotifier) SentInvites() []MockInvite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockInvite, len(m.invites))
	copy(out, m.invites)
	return out
}
