package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// messageRepository implements repository.MessageRepository.
type messageRepository struct {
	db *DB
}

// NewMessageRepository creates a new PostgreSQL contact message repository.
func NewMessageRepository(db *DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id::text, name, email, subject, body, is_read, created_at`

func scanMessage(row pgx.Row) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{}
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

// Create inserts a new message.
func (r *messageRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, body, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.Email, m.Subject, m.Body, m.IsRead, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID.
func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	m, err := scanMessage(r.db.Pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM contact_messages WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

// List returns messages newest first.
func (r *messageRepository) List(ctx context.Context, limit int) ([]*domain.ContactMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM contact_messages ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.ContactMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// SetRead updates the read flag.
func (r *messageRepository) SetRead(ctx context.Context, id string, isRead bool) error {
	if !validID(id) {
		return repository.ErrNotFound
	}

	result, err := r.db.Pool.Exec(ctx, `UPDATE contact_messages SET is_read = $1 WHERE id = $2`, isRead, id)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete deletes a message by ID.
func (r *messageRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the total and unread message counts.
func (r *messageRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, unread int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read) FROM contact_messages`,
	).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return total, unread, nil
}

// Ensure messageRepository implements repository.MessageRepository.
var _ repository.MessageRepository = (*messageRepository)(nil)
