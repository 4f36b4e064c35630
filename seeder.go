package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// SeedAccount describes a bootstrap account
type SeedAccount struct {
	Login    string
	Email    string
	Password string
	Role     UserRole
}

// DefaultSeedAccounts are the accounts created on an empty database
var DefaultSeedAccounts = []SeedAccount{
	{Login: "admin", Email: "admin@duelshop.com", Password: "admin12345", Role: RoleAdmin},
	{Login: "user", Email: "user@duelshop.com", Password: "user12345", Role: RoleUser},
}

// Seeder bootstraps the account table. Seeding is idempotent: an
// account whose login already exists is left untouched.
type Seeder struct {
	repo     RepositoryManager
	accounts []SeedAccount
	logger   Logger
}

// NewSeeder creates a seeder for the default bootstrap accounts
func NewSeeder(repo RepositoryManager) *Seeder {
	return &Seeder{
		repo:     repo,
		accounts: DefaultSeedAccounts,
		logger:   defLogger{},
	}
}

// WithAccounts overrides the accounts to seed
func (s *Seeder) WithAccounts(accounts ...SeedAccount) *Seeder {
	s.accounts = accounts
	return s
}

// WithLogger overrides the logger used by the seeder
func (s *Seeder) WithLogger(logger Logger) *Seeder {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Seed creates the bootstrap accounts that do not exist yet. Seeded
// accounts come up enabled and email verified.
func (s *Seeder) Seed(ctx context.Context) error {
	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, account := range s.accounts {
			if _, err := s.repo.Users().GetByLoginTx(ctx, tx, account.Login); err == nil {
				s.logger.Debug("seed account already exists, skipping", "login", account.Login)
				continue
			} else if !goerrors.IsNotFound(err) {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for seed account")
			}

			hash, err := HashPassword(account.Password)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash seed password")
			}

			user := &User{
				Login:         account.Login,
				Email:         account.Email,
				PasswordHash:  hash,
				Role:          account.Role,
				Enabled:       true,
				EmailVerified: true,
			}

			if _, err := s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
				return err
			}

			s.logger.Info("seed account created", "login", account.Login)
		}

		return nil
	})
}
