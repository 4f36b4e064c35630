package auth_test

import (
	"context"
	"testing"

	"github.com/duelshop/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_Render(t *testing.T) {
	mailer := auth.NewMailer(auth.SMTPConfig{})

	params := auth.TemplateParams{
		Username: "alice",
		Link:     "https://api.example.com/auth/verify?token=abc123",
	}

	t.Run("verification template includes username and link", func(t *testing.T) {
		content, err := mailer.Render(auth.NotificationVerifyEmail, params)

		require.NoError(t, err)
		assert.Contains(t, content, "alice")
		assert.Contains(t, content, params.Link)
	})

	t.Run("password reset template includes username and link", func(t *testing.T) {
		content, err := mailer.Render(auth.NotificationPasswordReset, params)

		require.NoError(t, err)
		assert.Contains(t, content, "alice")
		assert.Contains(t, content, params.Link)
	})

	t.Run("unknown notification kind is a render error", func(t *testing.T) {
		content, err := mailer.Render(auth.NotificationKind("carrier-pigeon"), params)

		assert.Empty(t, content)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.TextCodeTemplateRender, richErr.TextCode)
	})
}

func TestMailer_WithTemplate(t *testing.T) {
	t.Run("replaces the template for a kind", func(t *testing.T) {
		mailer := auth.NewMailer(auth.SMTPConfig{})

		_, err := mailer.WithTemplate(auth.NotificationVerifyEmail, "Hello {{.Username}}, visit {{.Link}}")
		require.NoError(t, err)

		content, err := mailer.Render(auth.NotificationVerifyEmail, auth.TemplateParams{
			Username: "bob",
			Link:     "https://example.com/v",
		})

		require.NoError(t, err)
		assert.Equal(t, "Hello bob, visit https://example.com/v", content)
	})

	t.Run("invalid template body is rejected and the old template survives", func(t *testing.T) {
		mailer := auth.NewMailer(auth.SMTPConfig{})

		_, err := mailer.WithTemplate(auth.NotificationVerifyEmail, "Hello {{.Username")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.TextCodeTemplateRender, richErr.TextCode)

		content, err := mailer.Render(auth.NotificationVerifyEmail, auth.TemplateParams{Username: "bob"})
		require.NoError(t, err)
		assert.Contains(t, content, "bob")
	})
}

func TestMailer_Send(t *testing.T) {
	t.Run("unconfigured transport is a send error", func(t *testing.T) {
		mailer := auth.NewMailer(auth.SMTPConfig{})

		err := mailer.Send(context.Background(), "alice@example.com", "Verify your email", "<html></html>")

		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.TextCodeNotificationSend, richErr.TextCode)
		assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
	})
}
