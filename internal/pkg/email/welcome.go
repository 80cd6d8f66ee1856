package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
)

const welcomeSubject = "Welcome to the College Blog"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Welcome, {{.Fullname}}!</h2>
		<p>Your account <strong>@{{.Username}}</strong> is ready. Sign in to write your first blog.</p>
		<p>See you around campus.</p>
	</div>
</body>
</html>`))

type welcome struct {
	Email    string
	Fullname string
	Username string
}

// WelcomeMailer sends a welcome email for every user.registered event. Mail
// goes out on a background worker so publishing never waits on SMTP.
type WelcomeMailer struct {
	sender Sender
	queue  chan welcome
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewWelcomeMailer starts a mailer with room for queueSize pending messages.
func NewWelcomeMailer(sender Sender, queueSize int, logger zerolog.Logger) *WelcomeMailer {
	m := &WelcomeMailer{
		sender: sender,
		queue:  make(chan welcome, queueSize),
		logger: logger,
	}
	m.wg.Add(1)
	go m.run()
	return m
}

var _ events.Publisher = (*WelcomeMailer)(nil)

func (m *WelcomeMailer) run() {
	defer m.wg.Done()
	for w := range m.queue {
		var body strings.Builder
		if err := welcomeTemplate.Execute(&body, w); err != nil {
			m.logger.Error().Err(err).Msg("Failed to render welcome email")
			continue
		}
		if err := m.sender.SendHTML(w.Email, welcomeSubject, body.String()); err != nil {
			m.logger.Error().Err(err).Str("username", w.Username).Msg("Failed to send welcome email")
			continue
		}
		m.logger.Debug().Str("username", w.Username).Msg("Welcome email sent")
	}
}

// Publish queues a welcome email for user.registered events and ignores the rest.
func (m *WelcomeMailer) Publish(_ context.Context, evt events.Event) error {
	if evt.Type != events.UserRegistered {
		return nil
	}
	payload, ok := evt.Payload.(map[string]string)
	if !ok || payload["email"] == "" {
		return fmt.Errorf("welcome email: event %s carries no recipient", evt.ID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("welcome mailer is closed")
	}

	select {
	case m.queue <- welcome{Email: payload["email"], Fullname: payload["fullname"], Username: payload["username"]}:
		return nil
	default:
		return fmt.Errorf("welcome email queue is full")
	}
}

// Close stops accepting events and waits for queued mail to go out.
func (m *WelcomeMailer) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}
