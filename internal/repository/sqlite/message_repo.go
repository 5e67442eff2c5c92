package sqlite

import (
	"context"
	"fmt"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// messageRepository implements repository.MessageRepository for SQLite.
type messageRepository struct {
	db *DB
}

// NewMessageRepository creates a new SQLite contact message repository.
func NewMessageRepository(db *DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, name, email, subject, body, is_read, created_at`

func scanMessage(row rowScanner) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{}
	var isRead int
	var createdAt string

	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &isRead, &createdAt); err != nil {
		return nil, err
	}
	m.IsRead = isRead != 0
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// Create inserts a new message.
func (r *messageRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	query := `INSERT INTO contact_messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.Subject, m.Body, boolToInt(m.IsRead), formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID.
func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM contact_messages WHERE id = ?`, id))
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
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	result, err := r.db.ExecContext(ctx,
		`UPDATE contact_messages SET is_read = ? WHERE id = ?`, boolToInt(isRead), id)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete deletes a message by ID.
func (r *messageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the total and unread message counts.
func (r *messageRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, unread int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0) FROM contact_messages`,
	).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return total, unread, nil
}

// Ensure messageRepository implements repository.MessageRepository.
var _ repository.MessageRepository = (*messageRepository)(nil)
