package sqlite

import (
	"context"
	"fmt"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// accountRepository implements repository.AccountRepository for SQLite.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(db *DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, username, password_hash, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	var role, createdAt string
	if err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &role, &createdAt); err != nil {
		return nil, err
	}
	account.Role = domain.Role(role)
	account.CreatedAt = parseTime(createdAt)
	return account, nil
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		string(account.Role),
		formatTime(account.CreatedAt),
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
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
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
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, username))
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
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("id", "account still owns projects")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsByUsername checks if an account with the given username exists.
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return count > 0, nil
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
