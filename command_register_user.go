package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Login          string `json:"login"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Gender         string `json:"gender"`
	ProfilePicture string `json:"profile_picture"`
	OnResponse     func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Login, validation.Required, validation.Length(3, 100)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 100)),
	)
}

type RegisterUserResponse struct {
	User    *User
	Success bool
}

// RegisterUserHandler creates the account, issues a verification token
// and sends the verification notification. The notification is a best
// effort follow up step: its failure is surfaced with a distinct error
// while the committed account and token stand.
type RegisterUserHandler struct {
	repo     RepositoryManager
	notifier Notifier
	config   Config
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults
func NewRegisterUserHandler(repo RepositoryManager, notifier Notifier, config Config) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		notifier: notifier,
		config:   config,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the handler
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	user := &User{}
	var verification *VerificationToken

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Login = event.Login
		user.Email = event.Email
		user.PasswordHash = hash
		user.Role = RoleUser
		user.Enabled = true
		user.Gender = event.Gender
		user.ProfilePicture = event.ProfilePicture

		// the unique constraints make the conflict check atomic with
		// creation, a losing racer fails here before any token work
		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}

		verification, err = h.repo.VerificationTokens().IssueTx(ctx, tx, user.ID, h.config.GetVerificationTokenTTL())
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	// account and token are committed, report success before the best
	// effort notification step
	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{User: user, Success: true})
	}

	return h.sendVerificationEmail(ctx, user, verification)
}

func (h *RegisterUserHandler) sendVerificationEmail(ctx context.Context, user *User, token *VerificationToken) error {
	link := h.config.GetBackendURL() + "/auth/verify?token=" + token.Token

	content, err := h.notifier.Render(NotificationVerifyEmail, TemplateParams{
		Username: user.Login,
		Link:     link,
	})
	if err != nil {
		h.logger.Error("failed to render verification email", "error", err, "user_id", user.ID.String())
		return err
	}

	if err := h.notifier.Send(ctx, user.Email, "Email verification", content); err != nil {
		h.logger.Error("failed to send verification email", "error", err, "user_id", user.ID.String())
		return err
	}

	return nil
}
