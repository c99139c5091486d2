package mail

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/config"
)

func TestNewSender(t *testing.T) {
	t.Parallel()

	t.Run("no host yields log sender", func(t *testing.T) {
		t.Parallel()
		sender := NewSender(config.MailConfig{}, slog.Default())
		assert.IsType(t, &LogSender{}, sender)
	})

	t.Run("configured host yields smtp sender", func(t *testing.T) {
		t.Parallel()
		sender := NewSender(config.MailConfig{
			SMTPHost: "smtp.example.com",
			SMTPPort: 587,
			From:     "noreply@example.com",
		}, slog.Default())
		assert.IsType(t, &SMTPSender{}, sender)
	})
}

func TestLogSender_Send(t *testing.T) {
	t.Parallel()

	sender := NewSender(config.MailConfig{}, slog.Default())
	err := sender.Send(context.Background(), "user@example.com", "Task reminder", "You have tasks waiting")
	assert.NoError(t, err)
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg, err := buildMessage(
		"noreply@example.com",
		"user@example.com",
		"Task reminder",
		"You have tasks waiting")
	require.NoError(t, err)

	raw := string(msg)
	assert.Contains(t, raw, "From: <noreply@example.com>")
	assert.Contains(t, raw, "To: <user@example.com>")
	assert.Contains(t, raw, "Subject: Task reminder")
	assert.True(t, strings.Contains(raw, "You have tasks waiting"),
		"body should survive MIME encoding for plain ASCII")
}
