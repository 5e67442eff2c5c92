package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// projectRepository implements repository.ProjectRepository for SQLite.
type projectRepository struct {
	db *DB
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(db *DB) repository.ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, title, description, long_description, image_url, price, category,
	technologies, demo_url, source_url, status, featured, owner_id, created_at, updated_at`

func scanProject(row rowScanner) (*domain.Project, error) {
	p := &domain.Project{}
	var demoURL, sourceURL sql.NullString
	var status, createdAt, updatedAt string
	var featured int

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.LongDescription,
		&p.ImageURL,
		&p.Price,
		&p.Category,
		&p.Technologies,
		&demoURL,
		&sourceURL,
		&status,
		&featured,
		&p.OwnerID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.DemoURL = scanNullString(demoURL)
	p.SourceURL = scanNullString(sourceURL)
	p.Status = domain.ProjectStatus(status)
	p.Featured = featured != 0
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// whereClause renders a filter into a WHERE clause and its arguments.
func whereClause(filter domain.ProjectFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.FeaturedOnly {
		conds = append(conds, "featured = 1")
	}
	if filter.OwnerID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.ExcludeID != "" {
		conds = append(conds, "id <> ?")
		args = append(args, filter.ExcludeID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Create creates a new project.
func (r *projectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.LongDescription,
		p.ImageURL,
		p.Price,
		p.Category,
		p.Technologies,
		nullString(p.DemoURL),
		nullString(p.SourceURL),
		string(p.Status),
		boolToInt(p.Featured),
		p.OwnerID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("userId", "owner account does not exist")
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID.
func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns projects matching the filter.
func (r *projectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + projectColumns + ` FROM projects` + where +
		` ORDER BY ` + filter.OrderBy()
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	return r.query(ctx, query, args...)
}

// Search returns active projects containing query in any searchable column,
// ignoring case for all of Unicode.
func (r *projectRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Project, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	q := `SELECT ` + projectColumns + ` FROM projects
		WHERE status = 'active' AND (
			fold(title) LIKE ? ESCAPE '\' OR
			fold(description) LIKE ? ESCAPE '\' OR
			fold(technologies) LIKE ? ESCAPE '\' OR
			fold(category) LIKE ? ESCAPE '\'
		)
		ORDER BY featured DESC, created_at DESC
		LIMIT ?`

	return r.query(ctx, q, pattern, pattern, pattern, pattern, limit)
}

func (r *projectRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// Categories returns the distinct categories of active projects.
func (r *projectRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM projects WHERE status = 'active' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update overwrites the mutable fields of an existing project.
func (r *projectRepository) Update(ctx context.Context, p *domain.Project) error {
	query := `
		UPDATE projects
		SET title = ?, description = ?, long_description = ?, image_url = ?, price = ?,
			category = ?, technologies = ?, demo_url = ?, source_url = ?, status = ?,
			featured = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Title,
		p.Description,
		p.LongDescription,
		p.ImageURL,
		p.Price,
		p.Category,
		p.Technologies,
		nullString(p.DemoURL),
		nullString(p.SourceURL),
		string(p.Status),
		boolToInt(p.Featured),
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete deletes a project by ID.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of projects matching the filter.
func (r *projectRepository) Count(ctx context.Context, filter domain.ProjectFilter) (int64, error) {
	where, args := whereClause(filter)

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// Ensure projectRepository implements repository.ProjectRepository.
var _ repository.ProjectRepository = (*projectRepository)(nil)
