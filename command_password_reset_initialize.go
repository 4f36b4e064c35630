package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// PasswordResetStep step on password reset
type PasswordResetStep = string

const (
	// ResetEmailSent means the reset notification was dispatched
	ResetEmailSent PasswordResetStep = "email-sent"
	// ResetChanged means the password was rotated
	ResetChanged PasswordResetStep = "password-changed"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" doc:"Account email address"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (e InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// Validate will run validation rules
func (e InitializePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, is.Email),
	)
}

type InitializePasswordResetResponse struct {
	Stage   PasswordResetStep
	Success bool
}

// InitializePasswordResetHandler issues a reset token for the account
// behind the given email and sends the reset notification. Issuing
// replaces any outstanding reset token for the account. An unknown
// email produces the same success shaped response as a known one, so
// the endpoint cannot be used to probe which emails exist.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	config   Config
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults
func NewInitializePasswordResetHandler(repo RepositoryManager, notifier Notifier, config Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		notifier: notifier,
		config:   config,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the handler
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	var user *User
	var reset *PasswordResetToken

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if goerrors.IsNotFound(err) {
				user = nil
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		reset, err = h.repo.PasswordResets().IssueTx(ctx, tx, user.ID, h.config.GetResetTokenTTL())
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{Stage: ResetEmailSent, Success: true})
	}

	if user == nil {
		// same response shape as the happy path, only the logs know
		h.logger.Info("password reset requested for unknown email", "email", event.Email)
		return nil
	}

	// delivery is fire and forget, failures go to the logger
	go h.sendResetEmail(context.WithoutCancel(ctx), user, reset)

	return nil
}

func (h *InitializePasswordResetHandler) sendResetEmail(ctx context.Context, user *User, token *PasswordResetToken) {
	link := h.config.GetFrontendURL() + "/auth/reset-password?token=" + token.Token

	content, err := h.notifier.Render(NotificationPasswordReset, TemplateParams{
		Username: user.Login,
		Link:     link,
	})
	if err != nil {
		h.logger.Error("failed to render password reset email", "error", err, "user_id", user.ID.String())
		return
	}

	if err := h.notifier.Send(ctx, user.Email, "Password reset", content); err != nil {
		h.logger.Error("failed to send password reset email", "error", err, "user_id", user.ID.String())
	}
}
