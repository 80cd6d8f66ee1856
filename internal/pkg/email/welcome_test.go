package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
)

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
	block chan struct{}
}

func (f *fakeSender) SendHTML(to, subject, body string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func registered(email string) events.Event {
	return events.New(events.UserRegistered, "u-1", map[string]string{
		"email":    email,
		"fullname": "Jane <Doe>",
		"username": "jane",
	})
}

func TestWelcomeMailer(t *testing.T) {
	sender := &fakeSender{}
	m := NewWelcomeMailer(sender, 4, zerolog.Nop())

	require.NoError(t, m.Publish(context.Background(), registered("jane@gecidukki.ac.in")))
	require.NoError(t, m.Publish(context.Background(), events.New(events.CommentCreated, "u-1", nil)))
	require.NoError(t, m.Close())

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "jane@gecidukki.ac.in", mail.to)
	assert.Equal(t, welcomeSubject, mail.subject)
	assert.Contains(t, mail.body, "Jane &lt;Doe&gt;")
	assert.Contains(t, mail.body, "@jane")
}

func TestWelcomeMailer_Rejections(t *testing.T) {
	block := make(chan struct{})
	m := NewWelcomeMailer(&fakeSender{block: block}, 1, zerolog.Nop())

	err := m.Publish(context.Background(), events.New(events.UserRegistered, "u-1", nil))
	assert.ErrorContains(t, err, "no recipient")

	// The worker holds the first message and the queue holds the second.
	require.NoError(t, m.Publish(context.Background(), registered("a@gecidukki.ac.in")))
	require.Eventually(t, func() bool { return len(m.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Publish(context.Background(), registered("b@gecidukki.ac.in")))
	assert.ErrorContains(t, m.Publish(context.Background(), registered("c@gecidukki.ac.in")), "queue is full")

	close(block)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.ErrorContains(t, m.Publish(context.Background(), registered("d@gecidukki.ac.in")), "closed")
}

func TestWelcomeMailer_SendFailureIsLogged(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	m := NewWelcomeMailer(sender, 2, zerolog.Nop())

	require.NoError(t, m.Publish(context.Background(), registered("jane@gecidukki.ac.in")))
	require.NoError(t, m.Close())
	assert.Empty(t, sender.sent)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage(SMTPConfig{FromName: "College Blog", FromEmail: "noreply@gecidukki.ac.in"},
		"jane@gecidukki.ac.in", "Hi", "<p>body</p>"))

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "<p>body</p>", body)
	assert.True(t, strings.HasPrefix(head, "From: College Blog <noreply@gecidukki.ac.in>\r\nTo: jane@gecidukki.ac.in\r\nSubject: Hi\r\n"))
	assert.Contains(t, head, "Content-Type: text/html; charset=UTF-8")
}

func TestSMTPSender_WithoutCredentialsOnlyLogs(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1}, zerolog.Nop())
	assert.NoError(t, s.SendHTML("jane@gecidukki.ac.in", "Hi", "<p>body</p>"))
}
