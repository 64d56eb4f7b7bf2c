package email_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"

	"github.com/workoutnotifier/workout-notifier/internal/email"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// MockDialer is a mock SMTP dialer.
type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) DialAndSend(msgs ...*mail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

var fixedNow = func() time.Time { return time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC) }

func validMessage() email.Message {
	return email.Message{
		To:       "athlete@example.com",
		Subject:  "Push Day - Monday",
		HTMLBody: "<p>Bench</p>",
		TextBody: "Bench",
	}
}

func render(t *testing.T, m *mail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(m *email.Message)
		wantErr bool
	}{
		{name: "valid", mutate: func(m *email.Message) {}},
		{name: "html only", mutate: func(m *email.Message) { m.TextBody = "" }},
		{name: "text only", mutate: func(m *email.Message) { m.HTMLBody = "" }},
		{name: "empty recipient", mutate: func(m *email.Message) { m.To = "" }, wantErr: true},
		{name: "whitespace recipient", mutate: func(m *email.Message) { m.To = "   " }, wantErr: true},
		{name: "empty subject", mutate: func(m *email.Message) { m.Subject = "" }, wantErr: true},
		{name: "no body", mutate: func(m *email.Message) { m.HTMLBody, m.TextBody = "", "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validMessage()
			tt.mutate(&msg)
			err := msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSMTPSender_Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     email.SMTPConfig
		wantErr bool
	}{
		{name: "starttls port", cfg: email.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "coach@example.com"}},
		{name: "implicit tls port", cfg: email.SMTPConfig{Host: "smtp.example.com", Port: 465, From: "coach@example.com"}},
		{name: "missing host", cfg: email.SMTPConfig{Port: 587, From: "coach@example.com"}, wantErr: true},
		{name: "zero port", cfg: email.SMTPConfig{Host: "smtp.example.com", From: "coach@example.com"}, wantErr: true},
		{name: "port too large", cfg: email.SMTPConfig{Host: "smtp.example.com", Port: 70000, From: "coach@example.com"}, wantErr: true},
		{name: "missing from", cfg: email.SMTPConfig{Host: "smtp.example.com", Port: 587}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := email.NewSMTPSender(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidConfig)
				assert.Nil(t, s)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestSMTPSender_Send(t *testing.T) {
	t.Parallel()

	dialer := new(MockDialer)
	var sent []*mail.Message
	dialer.On("DialAndSend", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(0).([]*mail.Message) }).
		Return(nil).
		Once()

	s := email.NewSMTPSenderWithDialer(dialer, "coach@example.com", "Coach", fixedNow)
	require.NoError(t, s.Send(context.Background(), validMessage()))

	dialer.AssertExpectations(t)
	require.Len(t, sent, 1)

	raw := render(t, sent[0])
	assert.Contains(t, raw, "<coach@example.com>")
	assert.Contains(t, raw, "Coach")
	assert.Contains(t, raw, "To: athlete@example.com")
	assert.Contains(t, raw, "Subject: Push Day - Monday")
	assert.Contains(t, raw, "Content-Type: multipart/alternative")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")

	ids := sent[0].GetHeader("Message-ID")
	require.Len(t, ids, 1)
	assert.True(t, strings.HasPrefix(ids[0], "<"))
	assert.True(t, strings.HasSuffix(ids[0], "@example.com>"))
}

func TestSMTPSender_SendHTMLOnly(t *testing.T) {
	t.Parallel()

	dialer := new(MockDialer)
	var sent []*mail.Message
	dialer.On("DialAndSend", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(0).([]*mail.Message) }).
		Return(nil)

	msg := validMessage()
	msg.TextBody = ""

	s := email.NewSMTPSenderWithDialer(dialer, "coach@example.com", "", fixedNow)
	require.NoError(t, s.Send(context.Background(), msg))

	raw := render(t, sent[0])
	assert.Contains(t, raw, "From: coach@example.com")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.NotContains(t, raw, "multipart/alternative")
}

func TestSMTPSender_SendFailure(t *testing.T) {
	t.Parallel()

	authErr := errors.New("535 authentication failed")
	dialer := new(MockDialer)
	dialer.On("DialAndSend", mock.Anything).Return(authErr).Once()

	s := email.NewSMTPSenderWithDialer(dialer, "coach@example.com", "", fixedNow)
	err := s.Send(context.Background(), validMessage())

	assert.ErrorIs(t, err, email.ErrSendFailed)
	assert.ErrorIs(t, err, authErr)
	dialer.AssertNumberOfCalls(t, "DialAndSend", 1)
}

func TestSMTPSender_SendDoesNotDialWhenInvalidOrCancelled(t *testing.T) {
	t.Parallel()

	dialer := new(MockDialer)
	s := email.NewSMTPSenderWithDialer(dialer, "coach@example.com", "", fixedNow)

	msg := validMessage()
	msg.To = ""
	assert.ErrorIs(t, s.Send(context.Background(), msg), email.ErrInvalidMessage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Send(ctx, validMessage())
	assert.ErrorIs(t, err, email.ErrSendFailed)
	assert.ErrorIs(t, err, context.Canceled)

	dialer.AssertNotCalled(t, "DialAndSend", mock.Anything)
}

func TestFileSender_Send(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	s, err := email.NewFileSender(dir, "coach@example.com", "Coach")
	require.NoError(t, err)
	email.SetFileSenderClock(s, fixedNow)

	require.NoError(t, s.Send(context.Background(), validMessage()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024_01_01_110000_push_day_-_monday.eml", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Subject: Push Day - Monday")
	assert.Contains(t, string(data), "To: athlete@example.com")
}

func TestNewFileSender_RequiresDir(t *testing.T) {
	t.Parallel()

	_, err := email.NewFileSender("", "coach@example.com", "")
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestLogSender_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := email.NewLogSender(logger.NewWithWriter(&buf, "info", "json"))

	require.NoError(t, s.Send(context.Background(), validMessage()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "athlete@example.com", entry["to"])
	assert.Equal(t, "Push Day - Monday", entry["subject"])
	assert.Equal(t, "Bench", entry["text"])
	assert.Equal(t, "email.log", entry["component"])
}

func TestNewGmailSender_Config(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := email.NewGmailSender(ctx, email.GmailConfig{CredentialsJSON: "{}"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewGmailSender(ctx, email.GmailConfig{SenderAddress: "coach@example.com"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewGmailSender(ctx, email.GmailConfig{SenderAddress: "coach@example.com", CredentialsJSON: "not json"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}
