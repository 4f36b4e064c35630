package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenHandlers adapts a concrete token model to the generic store
type TokenHandlers[T any] struct {
	NewRecord    func(userID uuid.UUID, value string, expiresAt time.Time) T
	GetValue     func(T) string
	GetUserID    func(T) uuid.UUID
	GetExpiresAt func(T) time.Time
}

// OneTimeTokens is a keyed store of opaque single use tokens, each
// bound to one account and carrying an expiry. The two kinds,
// verification and password reset, share mechanics but live in
// separate tables and are never interchangeable.
type OneTimeTokens[T any] struct {
	repository.Repository[T]
	db       *bun.DB
	handlers TokenHandlers[T]
	clock    Clock

	consumeSQL string
	// replacePriorSQL enables replace-on-issue: any live token for the
	// account is discarded in the same transaction the new one is
	// inserted in. Empty for kinds that allow coexisting tokens.
	replacePriorSQL string
}

func newVerificationToken(userID uuid.UUID, value string, expiresAt time.Time) *VerificationToken {
	return &VerificationToken{
		ID:        uuid.New(),
		Token:     value,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

// NewVerificationTokensRepository creates the store backing email
// verification tokens.
func NewVerificationTokensRepository(db *bun.DB) *OneTimeTokens[*VerificationToken] {
	repo := repository.NewRepository[*VerificationToken](db, repository.ModelHandlers[*VerificationToken]{
		NewRecord: func() *VerificationToken { return &VerificationToken{} },
		GetID: func(t *VerificationToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *VerificationToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string { return "token" },
	})

	return &OneTimeTokens[*VerificationToken]{
		Repository: repo,
		db:         db,
		clock:      systemClock{},
		handlers: TokenHandlers[*VerificationToken]{
			NewRecord:    newVerificationToken,
			GetValue:     func(t *VerificationToken) string { return t.Token },
			GetUserID:    func(t *VerificationToken) uuid.UUID { return t.UserID },
			GetExpiresAt: func(t *VerificationToken) time.Time { return t.ExpiresAt },
		},
		consumeSQL: `DELETE FROM "verification_tokens" WHERE "token" = ? RETURNING *;`,
	}
}

func newPasswordResetToken(userID uuid.UUID, value string, expiresAt time.Time) *PasswordResetToken {
	return &PasswordResetToken{
		ID:        uuid.New(),
		Token:     value,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

// NewPasswordResetTokensRepository creates the store backing password
// reset tokens. Reset tokens replace on issue.
func NewPasswordResetTokensRepository(db *bun.DB) *OneTimeTokens[*PasswordResetToken] {
	repo := repository.NewRepository[*PasswordResetToken](db, repository.ModelHandlers[*PasswordResetToken]{
		NewRecord: func() *PasswordResetToken { return &PasswordResetToken{} },
		GetID: func(t *PasswordResetToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *PasswordResetToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string { return "token" },
	})

	return &OneTimeTokens[*PasswordResetToken]{
		Repository: repo,
		db:         db,
		clock:      systemClock{},
		handlers: TokenHandlers[*PasswordResetToken]{
			NewRecord:    newPasswordResetToken,
			GetValue:     func(t *PasswordResetToken) string { return t.Token },
			GetUserID:    func(t *PasswordResetToken) uuid.UUID { return t.UserID },
			GetExpiresAt: func(t *PasswordResetToken) time.Time { return t.ExpiresAt },
		},
		consumeSQL:      `DELETE FROM "password_reset_tokens" WHERE "token" = ? RETURNING *;`,
		replacePriorSQL: `DELETE FROM "password_reset_tokens" WHERE "user_id" = ? RETURNING *;`,
	}
}

// WithClock overrides the clock used for expiry stamping and checks
func (r *OneTimeTokens[T]) WithClock(clock Clock) *OneTimeTokens[T] {
	if clock != nil {
		r.clock = clock
	}
	return r
}

// Issue creates a new token for the account inside its own transaction
func (r *OneTimeTokens[T]) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (T, error) {
	var record T
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = r.IssueTx(ctx, tx, userID, ttl)
		return err
	})
	return record, err
}

// IssueTx creates a new token bound to the account with expiry now+ttl.
// For the replace-on-issue kind any prior token for the account is
// deleted first, in the same transaction, so two concurrent issues
// leave exactly one survivor.
func (r *OneTimeTokens[T]) IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, ttl time.Duration) (T, error) {
	var zero T

	if r.replacePriorSQL != "" {
		if _, err := r.Repository.RawTx(ctx, tx, r.replacePriorSQL, userID); err != nil {
			return zero, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to discard prior token")
		}
	}

	record, err := r.insertTx(ctx, tx, userID, ttl)
	if err == nil {
		return record, nil
	}

	// the unique index is the collision guard; retry once with a
	// fresh value before giving up
	if !isUniqueViolation(err) {
		return zero, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist token")
	}

	record, err = r.insertTx(ctx, tx, userID, ttl)
	if err != nil {
		return zero, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist token after value collision")
	}

	return record, nil
}

func (r *OneTimeTokens[T]) insertTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, ttl time.Duration) (T, error) {
	var zero T

	value, err := NewTokenValue()
	if err != nil {
		return zero, err
	}

	record := r.handlers.NewRecord(userID, value, r.clock.Now().Add(ttl))
	return r.Repository.CreateTx(ctx, tx, record)
}

// Consume atomically looks up and deletes a token by value
func (r *OneTimeTokens[T]) Consume(ctx context.Context, value string) (T, error) {
	return r.ConsumeTx(ctx, r.db, value)
}

// ConsumeTx deletes the token and returns it in a single statement, so
// two concurrent consumes of the same value get exactly one success.
// An expired token is deleted too, but reported as expired; the next
// attempt with the same value reports not found.
func (r *OneTimeTokens[T]) ConsumeTx(ctx context.Context, tx bun.IDB, value string) (T, error) {
	var zero T

	rows, err := r.Repository.RawTx(ctx, tx, r.consumeSQL, value)
	if err != nil {
		return zero, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume token")
	}

	if len(rows) == 0 {
		return zero, ErrTokenNotFound
	}

	record := rows[0]
	if r.handlers.GetExpiresAt(record).Before(r.clock.Now()) {
		return zero, ErrTokenExpired
	}

	return record, nil
}

// OwnerID returns the account the token is bound to
func (r *OneTimeTokens[T]) OwnerID(record T) uuid.UUID {
	return r.handlers.GetUserID(record)
}

// Value returns the opaque token value
func (r *OneTimeTokens[T]) Value(record T) string {
	return r.handlers.GetValue(record)
}
