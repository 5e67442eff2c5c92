package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/repository"
)

// BcryptCost is the work factor for password hashes.
const BcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// AccountService owns the credential store: account management and login.
type AccountService struct {
	accountRepo repository.AccountRepository
	projectRepo repository.ProjectRepository
	guard       *auth.Guard
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	accountRepo repository.AccountRepository,
	projectRepo repository.ProjectRepository,
	guard *auth.Guard,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		projectRepo: projectRepo,
		guard:       guard,
		metrics:     m,
		logger:      logger.With().Str("service", "account").Logger(),
	}
}

// CreateAccountInput contains the data needed to create an account.
type CreateAccountInput struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (in *CreateAccountInput) validate() error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" || in.Role == "" {
		return domain.Invalid("", "All fields are required")
	}
	if len(in.Password) > MaxPasswordBytes {
		return domain.Invalid("password", "password must be at most 72 bytes")
	}
	if !in.Role.Valid() {
		return domain.Invalid("role", "role must be ADMIN or USER")
	}
	return nil
}

// Create creates an account on behalf of an admin session.
func (s *AccountService) Create(ctx context.Context, session *auth.Session, input CreateAccountInput) (*domain.Account, error) {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return nil, err
	}
	return s.Provision(ctx, input)
}

// Provision creates an account without an authorization check.
// It backs the admin CLI and the seed command.
func (s *AccountService) Provision(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	exists, err := s.accountRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, internalError(err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, internalError(err)
	}

	account := domain.NewAccount(input.Username, string(hash), input.Role)
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create account")
		return nil, internalError(err)
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Str("username", account.Username).
		Str("role", string(account.Role)).
		Msg("account created")

	return account, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords both
// return domain.ErrInvalidCredentials after a bcrypt comparison, so response
// timing does not reveal which usernames exist.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	// Usernames are stored trimmed.
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Invalid("", "Username and password are required")
	}

	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().Err(err).Msg("failed to load account for login")
			return nil, internalError(err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		s.metrics.RecordLogin(false)
		s.logger.Debug().Str("username", username).Msg("login for unknown username")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLogin(false)
		s.logger.Debug().Str("username", username).Msg("invalid password during login")
		return nil, domain.ErrInvalidCredentials
	}

	s.metrics.RecordLogin(true)
	s.logger.Info().
		Str("account_id", account.ID).
		Str("username", account.Username).
		Msg("account logged in")

	return account, nil
}

// dummy returns a hash used to equalize login timing for unknown users.
func (s *AccountService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("projecthub-timing-equalizer"), BcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// List returns every account, newest first. Admin only.
func (s *AccountService) List(ctx context.Context, session *auth.Session) ([]*domain.Account, error) {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return nil, err
	}
	return s.ListAll(ctx)
}

// ListAll returns every account without an authorization check.
func (s *AccountService) ListAll(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list accounts")
		return nil, internalError(err)
	}
	return accounts, nil
}

// Delete removes an account. Admins cannot delete themselves, and accounts
// that still own projects are refused.
func (s *AccountService) Delete(ctx context.Context, session *auth.Session, id string) error {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return err
	}
	if id == session.AccountID {
		return ErrCannotDeleteSelf
	}
	return s.Remove(ctx, id)
}

// Remove deletes an account without an authorization check.
func (s *AccountService) Remove(ctx context.Context, id string) error {
	if _, err := s.accountRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		s.logger.Error().Err(err).Str("account_id", id).Msg("failed to get account")
		return internalError(err)
	}

	owned, err := s.projectRepo.Count(ctx, domain.ProjectFilter{OwnerID: id})
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", id).Msg("failed to count owned projects")
		return internalError(err)
	}
	if owned > 0 {
		return domain.Invalid("id", "Account still owns projects; delete them first")
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		s.logger.Error().Err(err).Str("account_id", id).Msg("failed to delete account")
		return internalError(err)
	}

	s.logger.Info().Str("account_id", id).Msg("account deleted")
	return nil
}
