package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// accountRepository implements repository.AccountRepository.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id::text, username, password_hash, role, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}
	var role string
	if err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &role, &account.CreatedAt); err != nil {
		return nil, err
	}
	account.Role = domain.Role(role)
	account.CreatedAt = account.CreatedAt.UTC()
	return account, nil
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		string(account.Role),
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, account.Username)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	account, err := scanAccount(r.db.Pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, err := scanAccount(r.db.Pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}
	return account, nil
}

// List returns all accounts, newest first.
func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// Delete deletes an account by ID.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("id", "account still owns projects")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsByUsername checks if an account with the given username exists.
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
